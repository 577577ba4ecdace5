package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filament-swap/pkg/config"
	"filament-swap/pkg/project"
)

const cliConfig = `# generated by PrusaSlicer 2.8.0
extruder_colour = #FF0000;#00FF00;#0000FF
nozzle_diameter = 0.4,0.4,0.4
temperature = 215,240,210
wiping_volumes_matrix = 0,10,20,30,0,40,50,60,0
`

const cliProject = `{
  "custom_gcode_per_print_z": {
    "mode": "MultiExtruder",
    "gcodes": [
      {"print_z": 0.6, "type": "ToolChange", "extruder": 3},
      {"print_z": 1.2, "type": "PausePrint", "extruder": 0, "extra": "check"}
    ]
  },
  "objects": [{"name": "cube", "extruder": 1}]
}`

func fixture(t *testing.T, cfg string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.ini")
	projPath := filepath.Join(dir, "project.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(projPath, []byte(cliProject), 0o644))
	return cfgPath, projPath
}

func run(args ...string) (string, error) {
	var buf bytes.Buffer
	app := newApp(&buf)
	err := app.Run(append([]string{"filswap", "--env-file", ""}, args...))
	return buf.String(), err
}

func TestSwapCommand(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	out, err := run("-c", cfg, "-p", proj, "--no-backup", "swap", "1", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "swapped slot 1 and slot 3")

	h, err := project.Open(context.Background(), project.Paths{Config: cfg, Project: proj}, project.Options{})
	require.NoError(t, err)
	defer h.Close()

	p := h.Project()
	for _, v := range p.Vectors {
		if v.Key() == "extruder_colour" {
			assert.Equal(t, []string{"#0000FF", "#00FF00", "#FF0000"}, v.(*config.Strings).Values)
		}
	}
	assert.Equal(t, 1, p.Timeline.Gcodes[0].Extruder)
	assert.Equal(t, 3, p.Objects[0].Extruder)

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(cfg), "config-*.ini"))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestSwapCommandToolNames(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	out, err := run("-c", cfg, "-p", proj, "swap", "T0", "T1")
	require.NoError(t, err)
	assert.Contains(t, out, "swapped slot 1 and slot 2")
}

func TestSwapCommandSameSlot(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)
	before, err := os.ReadFile(cfg)
	require.NoError(t, err)

	out, err := run("-c", cfg, "-p", proj, "swap", "2", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing changed")

	after, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSwapCommandErrors(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"out of range", []string{"swap", "1", "4"}, "SWAP_INDEX"},
		{"zero slot", []string{"swap", "0", "1"}, "slots start at 1"},
		{"missing slot", []string{"swap", "1"}, "two slots"},
		{"not a number", []string{"swap", "one", "2"}, "invalid extruder slot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(append([]string{"-c", cfg, "-p", proj}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSwapCommandStaleMatrix(t *testing.T) {
	stale := `nozzle_diameter = 0.4,0.4,0.4
wiping_volumes_matrix = 0,1,1,0
`
	cfg, proj := fixture(t, stale)

	_, err := run("-c", cfg, "-p", proj, "--strict", "swap", "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWAP_MATRIX")

	out, err := run("-c", cfg, "-p", proj, "swap", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "left unchanged")
}

func TestSwapCommandMetricsFile(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)
	prom := filepath.Join(t.TempDir(), "filswap.prom")

	_, err := run("-c", cfg, "-p", proj, "--metrics-file", prom, "swap", "1", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `filswap_swaps_total{result="applied"} 1`)
	assert.Contains(t, string(data), "filswap_extruder_count 3")
}

func TestShowCommand(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	out, err := run("-c", cfg, "-p", proj, "show")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# generated by PrusaSlicer 2.8.0\nextruders: 3\n"), out)
	assert.Contains(t, out, "extruder_colour = #FF0000;#00FF00;#0000FF")
	assert.Contains(t, out, "wiping_volumes_matrix:")
	assert.Contains(t, out, "custom G-code (MultiExtruder)")
	assert.Contains(t, out, "slot 3")
	assert.Contains(t, out, "cube: slot 1")
}

func TestValidateCommand(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	out, err := run("-c", cfg, "-p", proj, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 3 extruders")

	bad := `nozzle_diameter = 0.4,0.4
temperature = 215,240,210
`
	cfg, proj = fixture(t, bad)
	out, err = run("-c", cfg, "-p", proj, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "temperature")
	assert.Contains(t, out, "extruder 3 exceeds extruder count 2")
}

func TestConfigRequired(t *testing.T) {
	_, err := run("show")
	assert.Error(t, err)
}

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) {
	panic("write on closed terminal")
}

func TestExecuteExitStatus(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)
	broken, brokenProj := fixture(t, "nozzle_diameter = 0.4,0.4\ntemperature = 215,hot\n")
	stale, staleProj := fixture(t, "nozzle_diameter = 0.4,0.4,0.4\nwiping_volumes_matrix = 0,1,1,0\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"swapped", []string{"-c", cfg, "-p", proj, "--no-backup", "swap", "1", "2"}, exitOK},
		{"slot out of range", []string{"-c", cfg, "-p", proj, "swap", "1", "4"}, exitRejected},
		{"stale matrix strict", []string{"-c", stale, "-p", staleProj, "--strict", "swap", "1", "2"}, exitRejected},
		{"bad config", []string{"-c", broken, "-p", brokenProj, "show"}, exitConfig},
		{"bad slot syntax", []string{"-c", cfg, "-p", proj, "swap", "one", "2"}, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(append([]string{"filswap", "--env-file", ""}, tt.args...), &stdout, &stderr)
			assert.Equal(t, tt.want, code, "stderr: %s", stderr.String())
			if tt.want != exitOK {
				assert.Contains(t, stderr.String(), "filswap: ")
			}
		})
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	cfg, proj := fixture(t, cliConfig)

	var stderr bytes.Buffer
	code := execute([]string{"filswap", "--env-file", "", "-c", cfg, "-p", proj, "show"}, panicWriter{}, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "RUNTIME")
	assert.Contains(t, stderr.String(), "write on closed terminal")

	// the deferred Close must have released the lock
	_, err := run("-c", cfg, "-p", proj, "--lock-timeout", "100ms", "validate")
	assert.NoError(t, err)
}
