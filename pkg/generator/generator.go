// Package generator orchestrates the two-phase run described in §5/§6:
// phase one reads every quadlet source unit from a UnitSource and builds
// the read-only cross-unit index, phase two translates each unit against
// that index and hands the generated systemd unit to a UnitSink. Per-unit
// failures are collected rather than aborting the run, mirroring the
// teacher's own parse-then-validate-then-report pipeline in
// cmd/quadlet-lint/main.go.
package generator

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qgen/quadlet-gen/pkg/idmap"
	"github.com/qgen/quadlet-gen/pkg/resolve"
	"github.com/qgen/quadlet-gen/pkg/translate"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// Options configures one generator Run, populated by pkg/config from
// flags/env/defaults before cmd/quadlet-gen calls Run.
type Options struct {
	UserMode  bool
	EngineBin string
}

// Outcome is one source unit's result: either a written service unit and
// its warnings, or a failure.
type Outcome struct {
	SourcePath  string
	ServiceName string
	Warnings    []string
	Err         error
}

// Result is the full run's outcome, in the deterministic processing order
// described by §5.
type Result struct {
	Outcomes []Outcome
}

// Failed reports every Outcome that carries an error.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// kindOrder fixes phase two's per-kind processing order so that every
// .container unit translates, and so registers its pod membership, before
// any .pod unit that might reference it is translated (see DESIGN.md's
// note on RegisterPodMember/PodMembers ordering). Kinds with no such
// cross-dependency keep their natural lexicographic order within the
// group.
var kindOrder = []resolve.Kind{
	resolve.KindVolume,
	resolve.KindNetwork,
	resolve.KindImage,
	resolve.KindBuild,
	resolve.KindKube,
	resolve.KindContainer,
	resolve.KindPod,
}

func translatorFor(kind resolve.Kind) translate.Translator {
	switch kind {
	case resolve.KindContainer:
		return translate.ContainerTranslator{}
	case resolve.KindVolume:
		return translate.VolumeTranslator{}
	case resolve.KindNetwork:
		return translate.NetworkTranslator{}
	case resolve.KindPod:
		return translate.PodTranslator{}
	case resolve.KindKube:
		return translate.KubeTranslator{}
	case resolve.KindImage:
		return translate.ImageTranslator{}
	case resolve.KindBuild:
		return translate.BuildTranslator{}
	default:
		return nil
	}
}

// Run executes the full two-phase pipeline against src, writing every
// successfully translated unit to sink. The returned error is non-nil only
// for a run-wide (catastrophic) failure; individual unit failures surface
// in Result.Outcomes per the partial-failure semantics of §5/§6.
func Run(src UnitSource, sink UnitSink, opts Options) (*Result, error) {
	type parsedUnit struct {
		unit *unitfile.Unit
		dir  string
	}

	units := make(map[string]parsedUnit)
	var order []string
	result := &Result{}

	for {
		path, data, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("reading quadlet source units: %w", err)
		}
		if !ok {
			break
		}

		name := filepath.Base(path)
		if _, dup := units[name]; dup {
			slog.Debug("duplicate unit name skipped by an earlier search directory", "unit", name)
			continue
		}

		u, err := unitfile.Parse(name, data)
		if err != nil {
			result.Outcomes = append(result.Outcomes, Outcome{SourcePath: name, Err: err})
			continue
		}
		units[name] = parsedUnit{unit: u, dir: filepath.Dir(path)}
		order = append(order, name)
	}

	fileNames := make([]string, 0, len(order))
	fileNames = append(fileNames, order...)
	idx := resolve.NewIndex(fileNames)

	type translated struct {
		name string
		info *resolve.UnitInfo
		out  *unitfile.Unit
	}
	var succeeded []translated

	for _, kind := range kindOrder {
		translator := translatorFor(kind)
		var names []string
		for _, info := range idx.All() {
			if info.Kind == kind {
				names = append(names, info.FileName)
			}
		}
		for _, name := range names {
			pu := units[name]
			info, _ := idx.Lookup(name)
			ctx := &translate.Context{
				UnitDir:    pu.dir,
				Resolver:   idx,
				UserMode:   opts.UserMode,
				EngineBin:  opts.EngineBin,
				IDResolver: idmap.SystemResolver{},
			}

			out, warnings, err := translator.Translate(ctx, pu.unit)
			for _, w := range warnings {
				slog.Warn(w, "unit", name)
			}
			if err != nil {
				result.Outcomes = append(result.Outcomes, Outcome{
					SourcePath: name,
					Warnings:   warnings,
					Err:        err,
				})
				continue
			}
			succeeded = append(succeeded, translated{name: name, info: info, out: out})
		}
	}

	graph := resolve.NewDependencyGraph()
	for _, t := range succeeded {
		for _, dep := range dependencyEdges(t.out) {
			if err := graph.AddEdge(t.info.ServiceFileName, dep); err != nil {
				return nil, fmt.Errorf("recording dependency graph: %w", err)
			}
		}
	}

	cycleErr := graph.Check()
	var cycle map[string]bool
	if ce, ok := cycleErr.(*resolve.CycleError); ok {
		cycle = make(map[string]bool, len(ce.Cycle))
		for _, name := range ce.Cycle {
			cycle[name] = true
		}
	}

	for _, t := range succeeded {
		if cycle[t.info.ServiceFileName] {
			result.Outcomes = append(result.Outcomes, Outcome{
				SourcePath: t.name,
				Err:        cycleErr,
			})
			continue
		}

		data := serialize(t.out)
		if err := sink.Write(t.info.ServiceFileName, data); err != nil {
			result.Outcomes = append(result.Outcomes, Outcome{SourcePath: t.name, Err: err})
			continue
		}
		result.Outcomes = append(result.Outcomes, Outcome{
			SourcePath:  t.name,
			ServiceName: t.info.ServiceFileName,
		})
	}

	return result, nil
}

// dependencyEdges reads the Requires=/BindsTo= keys a translator
// wrote into [Unit] and returns the service unit names they point to.
func dependencyEdges(out *unitfile.Unit) []string {
	var deps []string
	deps = append(deps, out.LookupAll("Unit", "Requires")...)
	deps = append(deps, out.LookupAll("Unit", "BindsTo")...)
	return deps
}
