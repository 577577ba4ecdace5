// Swap coordinator
//
// Relabels two extruder slots across every structure keyed by extruder:
// the wipe matrix, the custom G-code timeline, per-extruder config vectors
// and object assignments.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package swap

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"filament-swap/pkg/config"
	"filament-swap/pkg/customgcode"
	"filament-swap/pkg/errors"
	"filament-swap/pkg/extruder"
	"filament-swap/pkg/log"
	"filament-swap/pkg/metrics"
	"filament-swap/pkg/model"
	"filament-swap/pkg/wipe"
)

// Project is the in-memory state a swap operates on. Matrix, Timeline and
// Objects may be nil when the project has none.
type Project struct {
	mu sync.Mutex

	// Count is the number of extruders.
	Count    int
	Matrix   *wipe.Matrix
	Timeline *customgcode.Info
	Vectors  []config.Vector
	Objects  []model.Object
}

// Lock and Unlock expose the project mutex to code that reads the
// structures while swaps may run.
func (p *Project) Lock()   { p.mu.Lock() }
func (p *Project) Unlock() { p.mu.Unlock() }

// Result summarizes what a swap changed.
type Result struct {
	A, B extruder.Index

	// Identity is set when A == B and nothing was touched.
	Identity bool

	MatrixSwapped bool
	// MatrixSkipped is set when a matrix exists but does not match the
	// extruder count.
	MatrixSkipped bool

	TimelineRefs int
	Vectors      int
	ObjectRefs   int
}

// Coordinator applies swaps to projects.
type Coordinator struct {
	log     *log.Logger
	metrics *metrics.SwapMetrics

	// Strict rejects a swap when the wipe matrix does not match the
	// extruder count instead of leaving the matrix untouched.
	Strict bool
}

// NewCoordinator creates a coordinator. m may be nil.
func NewCoordinator(m *metrics.SwapMetrics) *Coordinator {
	return &Coordinator{
		log:     log.GetLogger("swap"),
		metrics: m,
	}
}

// SetLogger replaces the coordinator logger.
func (c *Coordinator) SetLogger(l *log.Logger) {
	c.log = l
}

// Swap exchanges extruders a and b in p. Either every structure is
// relabeled or, on error, none is.
func (c *Coordinator) Swap(ctx context.Context, p *Project, a, b extruder.Index) (Result, error) {
	start := time.Now()
	res := Result{A: a, B: b}

	if err := ctx.Err(); err != nil {
		c.reject(start, a, b, err)
		return res, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := c.check(p, a, b); err != nil {
		c.reject(start, a, b, err)
		return res, err
	}

	c.metrics.SetExtruderCount(p.Count)

	if a == b {
		res.Identity = true
		c.metrics.RecordSwap(metrics.ResultIdentity, time.Since(start))
		c.log.WithField("slot", a.String()).Debug("swap with itself, nothing to do")
		return res, nil
	}

	if p.Matrix != nil {
		if p.Matrix.Size() == p.Count {
			res.MatrixSwapped = p.Matrix.Swap(a, b)
		}
		res.MatrixSkipped = !res.MatrixSwapped
	}
	if p.Timeline != nil {
		res.TimelineRefs = p.Timeline.SwapExtruders(a, b)
	}
	for _, v := range p.Vectors {
		v.Swap(a, b)
	}
	res.Vectors = len(p.Vectors)
	res.ObjectRefs = model.SwapExtruders(p.Objects, a, b)

	elapsed := time.Since(start)
	c.metrics.RecordSwap(metrics.ResultApplied, elapsed)
	c.metrics.RecordRemap(res.TimelineRefs, res.Vectors, res.ObjectRefs)

	if res.MatrixSkipped {
		c.metrics.RecordMatrixSkip()
		c.log.WithFields(log.Fields{
			"size":   p.Matrix.Size(),
			"values": len(p.Matrix.Values()),
			"count":  p.Count,
		}).Warn("wipe matrix does not match extruder count, left unchanged")
	}

	c.log.WithFields(log.Fields{
		"a":        a.String(),
		"b":        b.String(),
		"matrix":   res.MatrixSwapped,
		"timeline": res.TimelineRefs,
		"vectors":  res.Vectors,
		"objects":  res.ObjectRefs,
		"elapsed":  elapsed,
	}).Info("extruders swapped")

	return res, nil
}

// check validates the request against p without modifying anything.
func (c *Coordinator) check(p *Project, a, b extruder.Index) error {
	for _, idx := range []extruder.Index{a, b} {
		if !idx.Valid(p.Count) {
			return errors.SwapIndexError(int(idx), p.Count)
		}
	}

	bad, found := lo.Find(p.Vectors, func(v config.Vector) bool {
		return !v.Complete() || v.Len() != p.Count
	})
	if found {
		return errors.SwapVectorError(bad.Key(), bad.Len(), p.Count)
	}

	if c.Strict && p.Matrix != nil {
		if err := p.Matrix.Validate(p.Count); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) reject(start time.Time, a, b extruder.Index, err error) {
	c.metrics.RecordSwap(metrics.ResultRejected, time.Since(start))
	c.log.WithError(err).WithFields(log.Fields{
		"a": a.String(),
		"b": b.String(),
	}).Warn("swap rejected")
}
