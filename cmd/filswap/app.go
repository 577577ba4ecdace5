package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"filament-swap/pkg/appconfig"
	"filament-swap/pkg/log"
	"filament-swap/pkg/project"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

// env holds the settings shared by every command.
type env struct {
	out    io.Writer
	cfg    *appconfig.Config
	paths  project.Paths
	closer io.Closer
}

func newApp(out io.Writer) *cli.App {
	e := &env{out: out}

	return &cli.App{
		Name:      "filswap",
		Usage:     "swap filament slots in a slicer project",
		Version:   version,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "slicer print config (ini)",
				EnvVars:  []string{"FILSWAP_CONFIG"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "project.json with custom G-code and objects",
				EnvVars: []string{"FILSWAP_PROJECT"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with FILSWAP_* settings",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "reject swaps when the wipe matrix does not match the extruder count",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "do not keep a timestamped copy of the config",
			},
			&cli.DurationFlag{
				Name:  "lock-timeout",
				Usage: "how long to wait for another filswap holding the project",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write Prometheus metrics to this textfile",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "also write logs to this file (rotated)",
			},
		},
		Before: e.setup,
		After:  e.teardown,
		Commands: []*cli.Command{
			swapCommand(e),
			showCommand(e),
			validateCommand(e),
		},
	}
}

// setup merges environment settings with flags and configures logging.
func (e *env) setup(c *cli.Context) error {
	cfg, err := appconfig.Parse(c.String("env-file"))
	if err != nil {
		return err
	}

	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("no-backup") {
		cfg.Backup = !c.Bool("no-backup")
	}
	if c.IsSet("lock-timeout") {
		cfg.LockTimeout = c.Duration("lock-timeout")
	}
	for flag, dst := range map[string]*string{
		"metrics-file": &cfg.MetricsFile,
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
		"log-file":     &cfg.LogFile,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	e.cfg = cfg
	e.paths = project.Paths{
		Config:  c.String("config"),
		Project: c.String("project"),
	}

	logger := log.New("filswap")
	if cfg.LogFile != "" {
		logger, e.closer, err = log.NewConsoleAndFileLogger("filswap", log.RotationConfig{Filename: cfg.LogFile})
		if err != nil {
			return err
		}
	}
	logger.SetLevel(log.ParseLevel(cfg.LogLevel))
	logger.SetFormat(log.ParseFormat(cfg.LogFormat))
	log.SetDefaultLogger(logger)
	return nil
}

func (e *env) teardown(*cli.Context) error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// open locks and loads the project named by the global flags.
func (e *env) open(ctx context.Context) (*project.Handle, error) {
	return project.Open(ctx, e.paths, project.Options{
		LockTimeout: e.cfg.LockTimeout,
		NoBackup:    !e.cfg.Backup,
	})
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}
