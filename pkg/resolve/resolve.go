// Package resolve implements the two-phase cross-unit resolver (§4.F/§5):
// phase one indexes every quadlet unit in a source directory by its
// engine-facing resource name and generated systemd service file name;
// phase two lets translators look those up by the stem written in a
// Mount=/Network=/Volume=/Pod= reference, and checks the resulting
// Requires=/BindsTo= edges for cycles before any output is written.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/qgen/quadlet-gen/pkg/utils"
)

// Kind identifies which of the seven quadlet unit types a file is.
type Kind string

const (
	KindContainer Kind = "container"
	KindVolume    Kind = "volume"
	KindNetwork   Kind = "network"
	KindPod       Kind = "pod"
	KindKube      Kind = "kube"
	KindImage     Kind = "image"
	KindBuild     Kind = "build"
)

// KindOf classifies a unit file by its extension, "" if unrecognized.
func KindOf(fileName string) Kind {
	switch {
	case strings.HasSuffix(fileName, ".container"):
		return KindContainer
	case strings.HasSuffix(fileName, ".volume"):
		return KindVolume
	case strings.HasSuffix(fileName, ".network"):
		return KindNetwork
	case strings.HasSuffix(fileName, ".pod"):
		return KindPod
	case strings.HasSuffix(fileName, ".kube"):
		return KindKube
	case strings.HasSuffix(fileName, ".image"):
		return KindImage
	case strings.HasSuffix(fileName, ".build"):
		return KindBuild
	default:
		return ""
	}
}

// stem strips the extension: "app.container" -> "app".
func stem(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return fileName
	}
	return fileName[:i]
}

// mangle produces the "systemd-<stem>" resource name podman assigns
// volumes, networks and containers it creates on a quadlet unit's behalf.
func mangle(s string) string { return "systemd-" + s }

// serviceFileSuffix maps each Kind to the suffix its generated systemd
// service unit carries relative to its stem.
var serviceFileSuffix = map[Kind]string{
	KindContainer: ".service",
	KindVolume:    "-volume.service",
	KindNetwork:   "-network.service",
	KindPod:       "-pod.service",
	KindKube:      ".service",
	KindImage:     "-image.service",
	KindBuild:     "-build.service",
}

// UnitInfo is everything phase two needs to know about one unit,
// independent of its parsed content.
type UnitInfo struct {
	FileName        string
	Kind            Kind
	Stem            string
	ResourceName    string // the name podman/the engine will know this resource by
	ServiceFileName string // the generated systemd unit's file name
}

// resourceNameFor returns the default resource name for a unit of the
// given kind; pod/kube/image/build resources are named after their stem
// directly, while volume/network/container names are mangled so they can't
// collide with user-created resources of the same name.
func resourceNameFor(kind Kind, stemName string) string {
	switch kind {
	case KindVolume, KindNetwork, KindContainer:
		return mangle(stemName)
	default:
		return stemName
	}
}

// Index is the result of phase one: every known unit, keyed by file name.
type Index struct {
	units      map[string]*UnitInfo
	podMembers map[string][]string
}

// NewIndex builds an Index from the file names present in a quadlet
// source directory. Names that don't carry a recognized quadlet extension
// are ignored.
func NewIndex(fileNames []string) *Index {
	idx := &Index{units: make(map[string]*UnitInfo, len(fileNames)), podMembers: make(map[string][]string)}
	for _, name := range fileNames {
		kind := KindOf(name)
		if kind == "" {
			continue
		}
		s := stem(name)
		idx.units[name] = &UnitInfo{
			FileName:        name,
			Kind:            kind,
			Stem:            s,
			ResourceName:    resourceNameFor(kind, s),
			ServiceFileName: s + serviceFileSuffix[kind],
		}
	}
	return idx
}

// SetResourceName overrides the default resource name computed at index
// time, for units whose content pins an explicit name (ContainerName=,
// PodName=, NetworkName=, VolumeName=, Image= for .image units built
// in-place, ...).
func (idx *Index) SetResourceName(fileName, resourceName string) {
	if u, ok := idx.units[fileName]; ok {
		u.ResourceName = resourceName
	}
}

// RegisterPodMember records that containerServiceFileName joins the pod
// declared by podFileName (via that container's Pod= key), so the pod's
// own translator can order itself ahead of every member.
func (idx *Index) RegisterPodMember(podFileName, containerServiceFileName string) {
	idx.podMembers[podFileName] = append(idx.podMembers[podFileName], containerServiceFileName)
}

// PodMembers returns every container service file name registered against
// podFileName by RegisterPodMember, in registration order.
func (idx *Index) PodMembers(podFileName string) []string {
	return idx.podMembers[podFileName]
}

// Lookup resolves a Mount=/Network=/Pod=/Volume= reference (the bare file
// name of a sibling unit, e.g. "data.volume") to its UnitInfo.
func (idx *Index) Lookup(fileName string) (*UnitInfo, bool) {
	u, ok := idx.units[fileName]
	return u, ok
}

// All returns every indexed unit, sorted lexicographically by file name,
// matching the deterministic processing order the generator commits to.
func (idx *Index) All() []*UnitInfo {
	names := make([]string, 0, len(idx.units))
	for name := range idx.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return utils.MapSlice(names, func(name string) *UnitInfo { return idx.units[name] })
}

// ResolveSource adapts Index to pkg/assemble.SourceResolver.
func (idx *Index) ResolveSource(name string) (resourceName, serviceUnit string, ok bool) {
	u, ok := idx.Lookup(name)
	if !ok {
		return "", "", false
	}
	return u.ResourceName, u.ServiceFileName, true
}

// ResolveUnit adapts Index to pkg/assemble.UnitResolver.
func (idx *Index) ResolveUnit(name string) (resourceName, serviceUnit string, ok bool) {
	return idx.ResolveSource(name)
}

// DependencyGraph accumulates the Requires=/After= edges translators
// record between generated service units, so they can be checked for
// cycles before anything is written to disk.
type DependencyGraph struct {
	g graph.Graph[string, string]
}

// NewDependencyGraph returns an empty graph of service file names.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		g: graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddEdge records that `from` depends on (Requires=/After=) `to`.
// Duplicate edges are ignored.
func (d *DependencyGraph) AddEdge(from, to string) error {
	_ = d.g.AddVertex(from)
	_ = d.g.AddVertex(to)
	err := d.g.AddEdge(from, to)
	if err != nil && err != graph.ErrEdgeAlreadyExists {
		return err
	}
	return nil
}

// CycleError reports a dependency cycle found among generated units.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Check returns a CycleError if the recorded dependency edges contain a
// cycle, using dominikbraun/graph's adjacency map for a DFS-based cycle
// detection.
func (d *DependencyGraph) Check() error {
	cycle, err := findCycle(d.g)
	if err != nil {
		return err
	}
	if cycle == nil {
		return nil
	}
	return &CycleError{Cycle: cycle}
}

// findCycle performs a DFS to detect a cycle and recover one concrete cycle
// for the error message. It returns a nil slice and nil error if no cycle
// exists.
func findCycle(g graph.Graph[string, string]) ([]string, error) {
	adj, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(v string) []string
	visit = func(v string) []string {
		visited[v] = true
		onStack[v] = true
		path = append(path, v)

		neighbors := make([]string, 0, len(adj[v]))
		for n := range adj[v] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, n := range neighbors {
			if onStack[n] {
				cycleStart := 0
				for i, p := range path {
					if p == n {
						cycleStart = i
						break
					}
				}
				return append(append([]string{}, path[cycleStart:]...), n)
			}
			if !visited[n] {
				if found := visit(n); found != nil {
					return found
				}
			}
		}

		path = path[:len(path)-1]
		onStack[v] = false
		return nil
	}

	vertices := make([]string, 0, len(adj))
	for v := range adj {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)

	for _, v := range vertices {
		if !visited[v] {
			if found := visit(v); found != nil {
				return found, nil
			}
		}
	}
	return nil, nil
}
