package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"filament-swap/pkg/log"
)

// Prefix is the environment variable prefix (FILSWAP_LOG_LEVEL, ...).
const Prefix = "filswap"

type Config struct {
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `split_words:"true" default:"INFO"`

	// LogFormat is "text" or "json".
	LogFormat string `split_words:"true" default:"text"`

	// LogFile, when set, additionally writes logs to a rotated file.
	LogFile string `split_words:"true"`

	// Strict turns a wipe matrix that does not match the extruder count into
	// an error instead of a warning.
	Strict bool

	// Backup writes a timestamped copy of the config before it is replaced.
	Backup bool `default:"true"`

	// LockTimeout bounds how long to wait for another process holding the
	// project lock.
	LockTimeout time.Duration `split_words:"true" default:"5s"`

	// MetricsFile is a Prometheus textfile collector path. Empty disables export.
	MetricsFile string `split_words:"true"`
}

// Parse loads envFile (when it exists) into the environment and then reads
// the FILSWAP_* variables. Variables already set win over the file.
func Parse(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.GetLogger("appconfig").WithError(err).WithField("file", envFile).Warn("failed to load env file")
			}
		}
	}

	var config Config
	if err := envconfig.Process(Prefix, &config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &config, nil
}
