package translate

import (
	"github.com/qgen/quadlet-gen/pkg/resolve"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// fakeResolver is a minimal in-memory stand-in for pkg/resolve.Index,
// giving tests full control over which sibling units exist without
// building a whole unit directory on disk.
type fakeResolver struct {
	units        map[string]*resolve.UnitInfo
	resourceName map[string]string
	podMembers   map[string][]string
}

func newFakeResolver(units ...*resolve.UnitInfo) *fakeResolver {
	m := make(map[string]*resolve.UnitInfo, len(units))
	for _, u := range units {
		m[u.FileName] = u
	}
	return &fakeResolver{
		units:        m,
		resourceName: make(map[string]string),
		podMembers:   make(map[string][]string),
	}
}

func (f *fakeResolver) Lookup(fileName string) (*resolve.UnitInfo, bool) {
	u, ok := f.units[fileName]
	if !ok {
		return nil, false
	}
	if rn, ok := f.resourceName[fileName]; ok {
		cp := *u
		cp.ResourceName = rn
		return &cp, true
	}
	cp := *u
	return &cp, true
}

func (f *fakeResolver) SetResourceName(fileName, resourceName string) {
	f.resourceName[fileName] = resourceName
}

func (f *fakeResolver) RegisterPodMember(podFileName, containerServiceFileName string) {
	f.podMembers[podFileName] = append(f.podMembers[podFileName], containerServiceFileName)
}

func (f *fakeResolver) PodMembers(podFileName string) []string {
	return f.podMembers[podFileName]
}

func (f *fakeResolver) ResolveSource(name string) (string, string, bool) {
	u, ok := f.Lookup(name)
	if !ok {
		return "", "", false
	}
	return u.ResourceName, u.ServiceFileName, true
}

func (f *fakeResolver) ResolveUnit(name string) (string, string, bool) {
	return f.ResolveSource(name)
}

// unitInfoFor builds the resolve.UnitInfo a real Index would produce for
// fileName, letting tests seed a fakeResolver without spinning up an Index.
func unitInfoFor(fileName string) *resolve.UnitInfo {
	kind := resolve.KindOf(fileName)
	info, _ := resolve.NewIndex([]string{fileName}).Lookup(fileName)
	if info != nil {
		return info
	}
	return &resolve.UnitInfo{FileName: fileName, Kind: kind}
}

// newSourceUnit builds a bare source Unit at path with an empty section
// of each kind name, ready for a test to Append/Set fields on.
func newSourceUnit(path string) *unitfile.Unit {
	return unitfile.New(path)
}

func resourceNameOf(f *fakeResolver, fileName string) string {
	info, ok := f.Lookup(fileName)
	if !ok {
		return ""
	}
	return info.ResourceName
}

func newTestContext(resolver *fakeResolver) *Context {
	return &Context{
		UnitDir:   "/etc/containers/systemd",
		Resolver:  resolver,
		UserMode:  false,
		EngineBin: "",
	}
}
