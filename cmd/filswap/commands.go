package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"filament-swap/pkg/config"
	"filament-swap/pkg/customgcode"
	"filament-swap/pkg/extruder"
	"filament-swap/pkg/log"
	"filament-swap/pkg/metrics"
	"filament-swap/pkg/model"
	"filament-swap/pkg/swap"
)

func swapCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "swap",
		Usage:     "swap two filament slots",
		ArgsUsage: "A B",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("swap needs two slots, got %d", c.NArg())
			}
			a, err := extruder.ParseIndex(c.Args().Get(0))
			if err != nil {
				return err
			}
			b, err := extruder.ParseIndex(c.Args().Get(1))
			if err != nil {
				return err
			}

			var m *metrics.SwapMetrics
			if e.cfg.MetricsFile != "" {
				m = metrics.NewSwapMetrics()
				defer func() {
					if err := m.WriteTextfile(e.cfg.MetricsFile); err != nil {
						log.GetLogger("filswap").WithError(err).Warn("failed to write metrics")
					}
				}()
			}

			h, err := e.open(c.Context)
			if err != nil {
				return err
			}
			defer h.Close()

			coord := swap.NewCoordinator(m)
			coord.Strict = e.cfg.Strict

			res, err := coord.Swap(c.Context, h.Project(), a, b)
			if err != nil {
				return err
			}
			if res.Identity {
				e.printf("slot %d swapped with itself, nothing changed\n", a.ID())
				return nil
			}
			if err := h.Save(); err != nil {
				return err
			}

			e.printf("swapped slot %d and slot %d: %d timeline items, %d settings, %d object assignments\n",
				a.ID(), b.ID(), res.TimelineRefs, res.Vectors, res.ObjectRefs)
			if res.MatrixSkipped {
				e.printf("warning: wipe matrix does not match %d extruders and was left unchanged\n", h.Project().Count)
			}
			return nil
		},
	}
}

func showCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print the per-extruder state of the project",
		Action: func(c *cli.Context) error {
			h, err := e.open(c.Context)
			if err != nil {
				return err
			}
			defer h.Close()

			for _, line := range h.PrintConfig().Config().Header() {
				e.printf("%s\n", line)
			}

			p := h.Project()
			p.Lock()
			defer p.Unlock()

			e.printf("extruders: %d\n", p.Count)
			e.showVectors("settings", p.Vectors)
			e.showVectors("tool settings (not swapped)", h.ToolVectors())
			if p.Matrix != nil {
				e.printf("\nwiping_volumes_matrix:\n%s\n", indent(p.Matrix.String()))
			}
			if p.Timeline != nil {
				e.showTimeline(p.Timeline)
			}
			if len(p.Objects) > 0 {
				e.showObjects(p.Objects)
			}
			return nil
		},
	}
}

func validateCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "check that every per-extruder structure matches the extruder count",
		Action: func(c *cli.Context) error {
			h, err := e.open(c.Context)
			if err != nil {
				return err
			}
			defer h.Close()

			errs := h.Validate()
			for _, err := range errs {
				e.printf("%v\n", err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d problem(s) found", len(errs))
			}
			e.printf("ok: %d extruders\n", h.Project().Count)
			return nil
		},
	}
}

func (e *env) showVectors(title string, vectors []config.Vector) {
	if len(vectors) == 0 {
		return
	}
	width := lo.Max(lo.Map(vectors, func(v config.Vector, _ int) int { return len(v.Key()) }))
	e.printf("\n%s:\n", title)
	for _, v := range vectors {
		e.printf("  %-*s = %s\n", width, v.Key(), v.Serialize())
	}
}

func (e *env) showTimeline(info *customgcode.Info) {
	e.printf("\ncustom G-code (%s):\n", info.Mode)
	for _, it := range info.Gcodes {
		slot := "current"
		if idx, ok := it.ExtruderID().Index(); ok {
			slot = fmt.Sprintf("slot %d", idx.ID())
		}
		e.printf("  z=%-8.3f %-12s %-8s %s\n", it.PrintZ, it.Type, slot, it.Command())
	}
}

func (e *env) showObjects(objects []model.Object) {
	e.printf("\nobjects:\n")
	for _, obj := range objects {
		e.printf("  %s: %s\n", obj.Name, slotName(obj.Extruder))
		for _, vol := range obj.Volumes {
			e.printf("    %s: %s\n", vol.Name, slotName(vol.Extruder))
		}
	}
}

func slotName(ref int) string {
	if ref == 0 {
		return "default"
	}
	return fmt.Sprintf("slot %d", ref)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	return strings.Join(lo.Map(lines, func(l string, _ int) string { return "  " + l }), "\n")
}
