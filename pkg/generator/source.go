package generator

import (
	"os"
	"path/filepath"
	"sort"
)

// UnitSource yields quadlet source units one at a time until exhausted,
// per §6's external interface contract.
type UnitSource interface {
	Next() (path string, data []byte, ok bool, err error)
}

// supportedExtensions lists the quadlet unit extensions DirSource looks
// for, matching the teacher's own supportedExtensions/getAllUnitFiles walk
// in cmd/quadlet-lint/main.go.
var supportedExtensions = map[string]bool{
	".container": true,
	".volume":    true,
	".network":   true,
	".pod":       true,
	".kube":      true,
	".image":     true,
	".build":     true,
}

// DirSource walks a list of directories in decreasing precedence (admin,
// then temp, then distro, mirroring constants.rs's UNIT_DIR_ADMIN/
// UNIT_DIR_TEMP/UNIT_DIR_DISTRO order) and yields every recognized quadlet
// unit it finds. A file present in more than one directory is only
// yielded once, from the highest-precedence directory that has it.
type DirSource struct {
	paths []string
	idx   int
}

// NewDirSource pre-walks dirs (highest precedence first, non-recursive)
// and prepares the deduplicated file list DirSource.Next hands out one at
// a time in lexicographic order by base name, per §5's deterministic
// processing order.
func NewDirSource(dirs []string) *DirSource {
	seen := make(map[string]bool)
	var paths []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // an absent search directory is not an error
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !supportedExtensions[filepath.Ext(e.Name())] {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return &DirSource{paths: paths}
}

// Next returns the next source unit's disk path and raw bytes, or
// ok=false once every directory has been exhausted.
func (d *DirSource) Next() (path string, data []byte, ok bool, err error) {
	if d.idx >= len(d.paths) {
		return "", nil, false, nil
	}
	p := d.paths[d.idx]
	d.idx++
	data, err = os.ReadFile(p)
	if err != nil {
		return p, nil, true, err
	}
	return p, data, true, nil
}
