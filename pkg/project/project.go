// Package project loads a print project from disk, hands it to the swap
// coordinator and writes it back.
//
// A project is a flat slicer config (config.ini) plus an optional
// project.json holding the custom G-code timeline and the object extruder
// assignments. project.json may contain comments and trailing commas.
package project

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
	pkgerrors "github.com/pkg/errors"
	"github.com/tailscale/hujson"

	"filament-swap/pkg/config"
	"filament-swap/pkg/customgcode"
	"filament-swap/pkg/errors"
	"filament-swap/pkg/log"
	"filament-swap/pkg/model"
	"filament-swap/pkg/swap"
)

// project.json keys owned by this package. Other keys are kept as-is.
const (
	keyCustomGcode = "custom_gcode_per_print_z"
	keyObjects     = "objects"
)

// Paths locates the files of a project. Project may be empty.
type Paths struct {
	Config  string
	Project string
}

// Options tune Open. The zero value is usable.
type Options struct {
	// LockTimeout defaults to DefaultLockTimeout.
	LockTimeout time.Duration
	// NoBackup skips the timestamped config backup on Save.
	NoBackup bool
	// Registry selects the per-extruder options; nil means the default set.
	Registry *config.Registry
}

// Handle is an open, locked project.
type Handle struct {
	paths   Paths
	lock    *fileLock
	cfg     *config.AutosaveConfig
	pcfg    *config.PrintConfig
	raw     map[string]json.RawMessage
	tools   []config.Vector
	project *swap.Project
	log     *log.Logger
}

// Open locks and loads the project. The lock is held until Close.
func Open(ctx context.Context, paths Paths, opts Options) (*Handle, error) {
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	lock, err := acquireLock(ctx, paths.Config, timeout)
	if err != nil {
		return nil, errors.ProjectLockError(paths.Config, err)
	}

	h := &Handle{
		paths: paths,
		lock:  lock,
		log:   log.GetLogger("project"),
	}
	if err := h.load(opts); err != nil {
		_ = lock.release()
		return nil, err
	}

	h.log.WithFields(log.Fields{
		"config":    paths.Config,
		"project":   paths.Project,
		"extruders": h.project.Count,
		"vectors":   len(h.project.Vectors),
	}).Debug("project opened")
	return h, nil
}

func (h *Handle) load(opts Options) error {
	cfg, err := config.LoadAutosave(h.paths.Config)
	if err != nil {
		return errors.ProjectIOError(h.paths.Config, err)
	}
	cfg.Backup = !opts.NoBackup
	h.cfg = cfg
	h.pcfg = config.NewPrintConfig(cfg.Config, opts.Registry)

	count, err := h.pcfg.ExtruderCount()
	if err != nil {
		return h.configError(err)
	}
	vectors, err := h.pcfg.Vectors()
	if err != nil {
		return h.configError(err)
	}
	matrix, err := h.pcfg.WipeMatrix(count)
	if err != nil {
		return h.configError(err)
	}
	if h.tools, err = h.pcfg.ToolVectors(); err != nil {
		return h.configError(err)
	}

	h.project = &swap.Project{
		Count:   count,
		Matrix:  matrix,
		Vectors: vectors,
	}

	if h.paths.Project == "" {
		return nil
	}
	return h.loadDocument()
}

func (h *Handle) configError(err error) error {
	var cerr *config.ConfigError
	if !pkgerrors.As(err, &cerr) {
		return errors.ProjectIOError(h.paths.Config, err)
	}
	return errors.ConfigValidationError(cerr.Section, cerr.Option, err).
		SetContext("path", h.paths.Config)
}

func (h *Handle) loadDocument() error {
	data, err := os.ReadFile(h.paths.Project)
	if err != nil {
		return errors.ProjectIOError(h.paths.Project, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return errors.ProjectIOError(h.paths.Project, pkgerrors.Wrap(err, "invalid JSONC"))
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(std, &raw); err != nil {
		return errors.ProjectIOError(h.paths.Project, pkgerrors.Wrap(err, "invalid JSON"))
	}
	h.raw = raw

	if msg, ok := raw[keyCustomGcode]; ok {
		var info customgcode.Info
		if err := json.Unmarshal(msg, &info); err != nil {
			return errors.TimelineParseError(err).SetContext("path", h.paths.Project)
		}
		h.project.Timeline = &info
	}
	if msg, ok := raw[keyObjects]; ok {
		if err := json.Unmarshal(msg, &h.project.Objects); err != nil {
			return errors.ProjectIOError(h.paths.Project, pkgerrors.Wrap(err, "invalid objects"))
		}
	}
	return nil
}

// Project returns the in-memory project for the swap coordinator.
func (h *Handle) Project() *swap.Project {
	return h.project
}

// PrintConfig returns the typed view of config.ini.
func (h *Handle) PrintConfig() *config.PrintConfig {
	return h.pcfg
}

// ToolVectors returns the per-extruder options of the physical extruders.
// Swaps do not touch them.
func (h *Handle) ToolVectors() []config.Vector {
	return h.tools
}

// Save writes the current state back. config.ini is only rewritten when an
// option changed; project.json is rewritten whenever it was loaded. Each
// file is replaced atomically.
func (h *Handle) Save() error {
	p := h.project
	p.Lock()
	defer p.Unlock()

	if err := h.pcfg.Store(h.cfg, p.Vectors, p.Matrix); err != nil {
		return errors.ProjectIOError(h.paths.Config, err)
	}
	if h.cfg.HasChanges() {
		changed := h.cfg.GetModifiedOptions(config.RootSection)
		if err := h.cfg.SaveChanges(h.paths.Config); err != nil {
			return errors.ProjectIOError(h.paths.Config, err)
		}
		h.log.WithFields(log.Fields{
			"path":    h.paths.Config,
			"options": changed,
		}).Info("config saved")
	}

	if h.raw == nil {
		return nil
	}
	if p.Timeline != nil {
		msg, err := json.Marshal(p.Timeline)
		if err != nil {
			return errors.ProjectIOError(h.paths.Project, err)
		}
		h.raw[keyCustomGcode] = msg
	}
	if p.Objects != nil {
		msg, err := json.Marshal(p.Objects)
		if err != nil {
			return errors.ProjectIOError(h.paths.Project, err)
		}
		h.raw[keyObjects] = msg
	}

	out, err := json.MarshalIndent(h.raw, "", "  ")
	if err != nil {
		return errors.ProjectIOError(h.paths.Project, err)
	}
	out = append(out, '\n')
	if err := atomic.WriteFile(h.paths.Project, bytes.NewReader(out)); err != nil {
		return errors.ProjectIOError(h.paths.Project, err)
	}
	h.log.WithField("path", h.paths.Project).Info("project saved")
	return nil
}

// Validate runs every consistency check and returns all failures.
func (h *Handle) Validate() []error {
	p := h.project
	p.Lock()
	defer p.Unlock()

	var errs []error
	if p.Matrix != nil {
		if err := p.Matrix.Validate(p.Count); err != nil {
			errs = append(errs, err)
		}
	}
	vectors := make([]config.Vector, 0, len(p.Vectors)+len(h.tools))
	vectors = append(append(vectors, p.Vectors...), h.tools...)
	for _, v := range vectors {
		if !v.Complete() || v.Len() != p.Count {
			errs = append(errs, errors.SwapVectorError(v.Key(), v.Len(), p.Count))
		}
	}
	if p.Timeline != nil {
		if err := p.Timeline.Validate(p.Count); err != nil {
			errs = append(errs, err)
		}
	}
	if err := model.Validate(p.Objects, p.Count); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Close releases the project lock. Unsaved changes are discarded.
func (h *Handle) Close() error {
	if h.lock == nil {
		return nil
	}
	err := h.lock.release()
	h.lock = nil
	return err
}
