package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// RootSection holds the options that appear before any [section] header.
// Slicer print configs are flat, so every option usually lives here.
const RootSection = ""

// Config provides access to a configuration file with access tracking.
type Config struct {
	mu       sync.RWMutex
	sections map[string]*Section
	order    []string // Maintains section order

	// header keeps the leading comment block so it survives a save
	header []string
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections: make(map[string]*Section),
	}
}

// Load reads a configuration file and returns a Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to open %s: %w", path, err)
	}
	defer f.Close()

	c, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// LoadString parses a configuration from a string.
func LoadString(data string) (*Config, error) {
	return parse(strings.NewReader(data))
}

// parse reads "key = value" lines, optionally grouped under [section]
// headers. Lines starting with '#' or ';' are comments. Values are not
// comment-stripped because colors are written as "#RRGGBB".
func parse(r io.Reader) (*Config, error) {
	c := New()
	currentSection := RootSection
	currentOptions := make(map[string]string)
	seenOption := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line[0] == '#' || line[0] == ';' {
			if !seenOption && len(c.order) == 0 {
				c.header = append(c.header, line)
			}
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			c.addSection(currentSection, currentOptions)

			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			if currentSection == "" {
				return nil, fmt.Errorf("config: empty section header at line %d", lineNum)
			}
			currentOptions = make(map[string]string)
			continue
		}

		// Parse key = value, falling back to key: value
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			kv = strings.SplitN(line, ":", 2)
		}
		if len(kv) != 2 {
			return nil, fmt.Errorf("config: line %d: expected 'key = value', got %q", lineNum, line)
		}

		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if key == "" {
			return nil, fmt.Errorf("config: line %d: empty option name", lineNum)
		}
		currentOptions[key] = value
		seenOption = true
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read error: %w", err)
	}

	c.addSection(currentSection, currentOptions)
	return c, nil
}

// addSection adds a section to the config. Empty root sections are dropped.
func (c *Config) addSection(name string, options map[string]string) {
	if name == RootSection && len(options) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// If section already exists, merge options
	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.set(k, v)
		}
		return
	}

	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSectionOptional returns a Section if it exists, or nil if not.
func (c *Config) GetSectionOptional(name string) *Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sections[name]
}

// Root returns the root section, creating it if the file had none.
func (c *Config) Root() *Section {
	c.mu.Lock()
	defer c.mu.Unlock()

	sec, ok := c.sections[RootSection]
	if !ok {
		sec = newSection(RootSection, nil)
		c.sections[RootSection] = sec
		c.order = append([]string{RootSection}, c.order...)
	}
	return sec
}

// SetOption sets an option value, creating the section if needed.
func (c *Config) SetOption(section, option, value string) error {
	if section == RootSection {
		c.Root().Set(option, value)
		return nil
	}
	if sec := c.GetSectionOptional(section); sec != nil {
		sec.Set(option, value)
		return nil
	}
	c.addSection(section, map[string]string{option: value})
	return nil
}

// Header returns the leading comment lines of the file.
func (c *Config) Header() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.header...)
}

// String renders the config in the format accepted by LoadString. The
// root section comes first, options are sorted by name.
func (c *Config) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var sb strings.Builder
	for _, h := range c.header {
		sb.WriteString(h)
		sb.WriteString("\n")
	}

	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == RootSection && names[j] != RootSection
	})

	for i, name := range names {
		if name != RootSection {
			if i > 0 || len(c.header) > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("[")
			sb.WriteString(name)
			sb.WriteString("]\n")
		}

		options := c.sections[name].RawOptions()
		keys := make([]string, 0, len(options))
		for k := range options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(k)
			sb.WriteString(" = ")
			sb.WriteString(options[k])
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
