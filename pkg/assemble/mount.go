// Package assemble builds the comma-separated Mount=/PublishPort=/Network=
// flag values a container engine expects, from the friendlier syntax
// quadlet unit files allow (§4.E).
package assemble

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
)

// Mount is a parsed Mount= value: its type (volume, bind, tmpfs, glob,
// image, ...) and the remaining, order-preserving key=val/bare tokens
// with "type=" and "source="/"src=" already pulled out.
type Mount struct {
	Type   string
	Source string // "" if this mount had no source token
	Tokens []string
}

// SourceResolver resolves a Mount=/Volume= source that names a sibling
// .volume or .image unit into the engine-facing resource name, along with
// the systemd unit name that a Requires=/After= dependency should target.
// ok is false when name does not refer to a resource this resolver knows
// about.
type SourceResolver interface {
	ResolveSource(name string) (resourceName, serviceUnit string, ok bool)
}

// ParseMount splits a raw Mount= value into its type and remaining
// tokens, defaulting to type "volume" when no type= token is present, the
// way find_mount_type does.
func ParseMount(raw string) (Mount, error) {
	fields, err := splitCSVRecord(raw)
	if err != nil {
		return Mount{}, fmt.Errorf("invalid mount format %q: %w", raw, err)
	}

	m := Mount{Tokens: make([]string, 0, len(fields))}
	foundType := false
	for _, field := range fields {
		k, v, hasEq := strings.Cut(field, "=")
		switch {
		case !foundType && hasEq && k == "type":
			m.Type = v
			foundType = true
		case hasEq && (k == "source" || k == "src"):
			m.Source = v
		default:
			m.Tokens = append(m.Tokens, field)
		}
	}
	if !foundType {
		m.Type = "volume"
	}
	return m, nil
}

// needsSourceResolution reports whether a mount of the given type carries
// a host- or unit-relative source that must be normalized before it can
// be handed to the container engine.
func needsSourceResolution(mountType string) bool {
	switch mountType {
	case "volume", "bind", "glob", "image":
		return true
	default:
		return false
	}
}

// Normalize turns a Mount= value from the quadlet grammar into the exact
// CSV the container engine expects: only the "source="/"src=" token is
// pulled out and rewritten (relocated to the end, and resolved when it
// names a sibling .volume/.image unit); every other token is piped
// through verbatim. unitDir is the directory the owning unit file lives
// in, used to make a relative host path absolute. It returns the
// normalized value and, when the mount pinned a sibling unit, the systemd
// service name a Requires=/After= pair should target.
func Normalize(raw, unitDir string, resolver SourceResolver) (value string, dependsOn string, err error) {
	m, err := ParseMount(raw)
	if err != nil {
		return "", "", err
	}

	tokens := make([]string, 0, len(m.Tokens)+2)
	tokens = append(tokens, "type="+m.Type)
	tokens = append(tokens, m.Tokens...)

	if m.Source != "" && needsSourceResolution(m.Type) {
		resolved, dep, rerr := ResolveSource(m.Source, unitDir, resolver)
		if rerr != nil {
			return "", "", rerr
		}
		dependsOn = dep
		tokens = append(tokens, "source="+resolved)
	} else if m.Source != "" {
		tokens = append(tokens, "source="+m.Source)
	}

	return joinCSVRecord(tokens), dependsOn, nil
}

// ResolveSource implements handle_storage_source's three cases: a
// unit-relative "./..." path is made absolute against unitDir; an
// absolute host path passes through unchanged (the caller is responsible
// for recording RequiresMountsFor); and a name ending in ".volume" or
// ".image" resolves via the SourceResolver to its mangled resource name,
// returning the sibling service unit that should gate it.
func ResolveSource(source, unitDir string, resolver SourceResolver) (resolved string, dependsOn string, err error) {
	if strings.HasPrefix(source, ".") {
		source = filepath.Join(unitDir, source)
	}
	if strings.HasPrefix(source, "/") {
		return source, "", nil
	}
	if strings.HasSuffix(source, ".volume") || strings.HasSuffix(source, ".image") {
		if resolver == nil {
			return "", "", fmt.Errorf("mount source %q names a unit but no resolver was supplied", source)
		}
		resourceName, serviceUnit, ok := resolver.ResolveSource(source)
		if !ok {
			return "", "", fmt.Errorf("mount source %q not found among sibling units", source)
		}
		return resourceName, serviceUnit, nil
	}
	return source, "", nil
}

// NormalizeVolume rewrites a Volume= value's source field the same way
// Normalize does for Mount=: a "./..." path becomes absolute, an absolute
// path passes through, and a name ending in ".volume"/".image" resolves to
// its sibling unit's resource name. The colon-separated dest/options
// fields, if any, are left untouched.
func NormalizeVolume(raw, unitDir string, resolver SourceResolver) (value string, dependsOn string, err error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) == 0 || parts[0] == "" {
		return raw, "", nil
	}
	if !needsVolumeSourceResolution(parts[0]) {
		return raw, "", nil
	}
	resolved, dep, err := ResolveSource(parts[0], unitDir, resolver)
	if err != nil {
		return "", "", err
	}
	parts[0] = resolved
	return strings.Join(parts, ":"), dep, nil
}

// needsVolumeSourceResolution reports whether a Volume= source token could
// name a sibling unit or a unit-relative path, as opposed to a bare
// container-managed volume name (e.g. "myvolume:/dest") which podman
// creates implicitly and which no sibling unit backs.
func needsVolumeSourceResolution(source string) bool {
	return strings.HasPrefix(source, ".") || strings.HasPrefix(source, "/") ||
		strings.HasSuffix(source, ".volume") || strings.HasSuffix(source, ".image")
}

func splitCSVRecord(raw string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return nil, err
	}
	return record, nil
}

func joinCSVRecord(fields []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimRight(b.String(), "\r\n")
}
