package assemble

import (
	"fmt"
	"strings"
)

// NetworkError reports a malformed or contradictory Network= value.
type NetworkError struct {
	Value string
	Msg   string
}

func (e *NetworkError) Error() string { return fmt.Sprintf("invalid network %q: %s", e.Value, e.Msg) }

// Network is a parsed Network= value.
type Network struct {
	// Name is the raw network name/mode as written: a bare mode keyword
	// (host, none, bridge, slirp4netns, pasta), "container:<id>", or a
	// unit reference ("<stem>.network" or "<stem>.container").
	Name    string
	Options string // driver options after the first ':', "" if none
	IsUnit  bool   // Name refers to a sibling .network or .container unit
	IsPod   bool   // Name refers to a sibling .container unit (network namespace sharing)
}

// ParseNetwork splits a Network= value on its first ':' into a name and an
// optional trailing options string, and classifies whether the name is a
// sibling .network/.container unit reference. A bare mode keyword (host,
// none, bridge, slirp4netns, pasta) or a "container:<id>" passthrough both
// fall out of this split naturally: neither ends in ".network" or
// ".container", so they are never treated as unit references.
func ParseNetwork(raw string) (Network, error) {
	name, opts, hasOpts := strings.Cut(raw, ":")
	n := Network{Name: name}
	if hasOpts {
		n.Options = opts
	}
	n.IsUnit = strings.HasSuffix(name, ".network") || strings.HasSuffix(name, ".container")
	n.IsPod = strings.HasSuffix(name, ".container")
	return n, nil
}

// UnitResolver resolves a sibling .network/.container unit name to its
// engine-facing resource name and systemd service unit name.
type UnitResolver interface {
	ResolveUnit(name string) (resourceName, serviceUnit string, ok bool)
}

// Resolve turns a parsed Network into the exact "--network" flag argument
// and, if it referenced a sibling unit, the systemd service name a
// Requires=/After= pair should target.
func Resolve(n Network, resolver UnitResolver) (flagValue string, dependsOn string, err error) {
	if !n.IsUnit {
		if n.Options != "" {
			return n.Name + ":" + n.Options, "", nil
		}
		return n.Name, "", nil
	}

	if n.Options != "" && n.IsPod {
		return "", "", &NetworkError{Value: n.Name, Msg: "driver options are not valid when referencing a .container unit"}
	}

	if resolver == nil {
		return "", "", fmt.Errorf("network %q names a unit but no resolver was supplied", n.Name)
	}
	resourceName, serviceUnit, ok := resolver.ResolveUnit(n.Name)
	if !ok {
		return "", "", &NetworkError{Value: n.Name, Msg: "referenced unit not found among siblings"}
	}

	if n.IsPod {
		return "container:" + resourceName, serviceUnit, nil
	}
	if n.Options != "" {
		return resourceName + ":" + n.Options, serviceUnit, nil
	}
	return resourceName, serviceUnit, nil
}
