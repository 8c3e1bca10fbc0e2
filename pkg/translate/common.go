package translate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qgen/quadlet-gen/pkg/assemble"
	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/idmap"
	"github.com/qgen/quadlet-gen/pkg/resolve"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// Resolver is what a translator needs from the cross-unit index: mount
// and network source resolution plus a generic sibling-unit lookup for
// Pod=/ContainerName=-style references.
type Resolver interface {
	assemble.SourceResolver
	assemble.UnitResolver
	Lookup(fileName string) (*resolve.UnitInfo, bool)
	SetResourceName(fileName, resourceName string)
	RegisterPodMember(podFileName, containerServiceFileName string)
	PodMembers(podFileName string) []string
}

// Context carries everything a translator needs beyond the source Unit
// itself: where it lives on disk, how to resolve sibling units, whether
// this is a --user generator invocation, and the engine binary to invoke.
type Context struct {
	UnitDir    string
	Resolver   Resolver
	UserMode   bool
	EngineBin  string
	IDResolver idmap.Resolver
}

// Translator maps a parsed source Unit of one specific kind to its
// generated systemd service Unit.
type Translator interface {
	Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error)
}

// newBaseCommand starts an engine.Command the way get_base_podman_command
// does: the engine binary, any ContainersConfModule=-derived --module
// flags, then GlobalArgs=, then the subcommand tokens ("run", "network
// create", ...) and whatever the caller adds after.
func newBaseCommand(ctx *Context, src *unitfile.Unit, section, subcommand string) *engine.Command {
	cmd := engine.New(ctx.EngineBin, "")
	lookupAndAddAllStrings(src, section, [][2]string{{"ContainersConfModule", "--module"}}, cmd)
	if args, err := src.LookupAllArgs(section, "GlobalArgs"); err == nil {
		cmd.AddSlice(args)
	}
	for _, tok := range strings.Fields(subcommand) {
		cmd.Add(tok)
	}
	return cmd
}

// checkForUnknownKeys rejects any key in section that isn't in
// supportedKeys, mirroring check_for_unknown_keys.
func checkForUnknownKeys(src *unitfile.Unit, section string, supportedKeys []string) error {
	s := src.Section(section)
	if s == nil {
		return nil
	}
	allowed := make(map[string]bool, len(supportedKeys))
	for _, k := range supportedKeys {
		allowed[k] = true
	}
	for _, k := range s.Keys() {
		if !allowed[k] {
			return newError(KindUnknownKey, src.Path, "unsupported key %q in group [%s]", k, section)
		}
	}
	return nil
}

// warnUnsupportedServiceKeys reports, but does not fail on, [Service]
// keys the generator itself manages.
func warnUnsupportedServiceKeys(src *unitfile.Unit) []string {
	var warnings []string
	s := src.Section(ServiceSection)
	if s == nil {
		return nil
	}
	for _, key := range UnsupportedServiceKeys {
		if s.HasKey(key) {
			warnings = append(warnings, fmt.Sprintf("using key %s in the [Service] group is not supported - use at your own risk", key))
		}
	}
	return warnings
}

// initServiceUnitFile builds the generated Unit's [Unit] section, copies
// [Install] through, and renames the source's kind section and [Quadlet]
// section behind their X- prefixed names for later reference (§4.F).
func initServiceUnitFile(src *unitfile.Unit, section, xSection, serviceFileName string) (*unitfile.Unit, error) {
	if err := checkForUnknownKeys(src, QuadletSection, SupportedQuadletKeys); err != nil {
		return nil, err
	}
	out := unitfile.New(serviceFileName)

	if s := src.Section(UnitSection); s != nil {
		for _, e := range s.Entries {
			out.Append(UnitSection, e.Key, e.Value)
		}
	}
	if s := src.Section(InstallSection); s != nil {
		for _, e := range s.Entries {
			out.Append(InstallSection, e.Key, e.Value)
		}
	}

	if src.Path != "" {
		out.Set(UnitSection, "SourcePath", src.Path)
	}
	out.Append(UnitSection, "RequiresMountsFor", "%t/containers")

	if s := src.Section(section); s != nil {
		xs := out.AddSection(xSection)
		for _, e := range s.Entries {
			xs.AppendEntry(e)
		}
	}
	if s := src.Section(QuadletSection); s != nil {
		xs := out.AddSection(XQuadletSection)
		for _, e := range s.Entries {
			xs.AppendEntry(e)
		}
	}

	return out, nil
}

// handleDefaultDependencies adds a dependency on network-online.target so
// the image pull doesn't happen before the network is ready, unless
// [Quadlet]/DefaultDependencies=no suppresses it. It prepends rather than
// appends so network-online.target precedes whatever other After=/Wants=
// entries earlier or later handling adds (sibling-unit deps in
// particular).
func handleDefaultDependencies(src *unitfile.Unit, out *unitfile.Unit, userMode bool) {
	if v, ok := src.LookupLast(QuadletSection, "DefaultDependencies"); ok {
		enabled, ambiguous, _ := boolValue(v)
		if !ambiguous && !enabled {
			return
		}
	}
	const networkUnit = "network-online.target"
	out.Prepend(UnitSection, "After", networkUnit)
	out.Prepend(UnitSection, "Wants", networkUnit)
}

func boolValue(v string) (value, ambiguous, present bool) {
	tmp := unitfile.New("")
	tmp.Set("s", "k", v)
	return tmp.LookupBool("s", "k")
}

// handleUnitDependencies copies the [Unit] dependency keys
// (UnitDependencyKeys) from the source unit, resolving any value that
// names a sibling quadlet unit to that unit's generated service file
// name, the way handle_unit_dependencies does.
func handleUnitDependencies(src *unitfile.Unit, out *unitfile.Unit, resolver Resolver) error {
	s := src.Section(UnitSection)
	if s == nil {
		return nil
	}
	for _, key := range UnitDependencyKeys {
		for _, v := range s.LookupAll(key) {
			resolved := v
			if info, ok := resolver.Lookup(v); ok {
				resolved = info.ServiceFileName
			}
			out.Append(UnitSection, key, resolved)
		}
	}
	return nil
}

// absoluteFromUnit makes a "./relative" path absolute against the source
// unit's directory, mirroring PathBuf::absolute_from_unit.
func absoluteFromUnit(path, unitDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(unitDir, path)
}

// lookupAndAddAllKeyVals appends flag/KEY=VALUE pairs for every (sourceKey,
// flag) pair in keys, in keys' order, matching
// lookup_and_add_all_key_vals.
func lookupAndAddAllKeyVals(src *unitfile.Unit, section string, keys [][2]string, cmd *engine.Command) {
	for _, kf := range keys {
		for _, kv := range src.LookupAllKeyVal(section, kf[0]) {
			cmd.Add(kf[1])
			cmd.Add(kv.Key + "=" + kv.Value)
		}
	}
}

// lookupAndAddAllStrings appends flag/value pairs for every value of each
// (sourceKey, flag) pair, matching lookup_and_add_all_strings.
func lookupAndAddAllStrings(src *unitfile.Unit, section string, keys [][2]string, cmd *engine.Command) {
	for _, kf := range keys {
		cmd.AddAll(kf[1], src.LookupAll(section, kf[0]))
	}
}

// lookupAndAddBool appends flag=value for every (sourceKey, flag) pair
// that is present, matching lookup_and_add_bool.
func lookupAndAddBool(src *unitfile.Unit, section string, keys [][2]string, cmd *engine.Command) {
	for _, kf := range keys {
		if v, ambiguous, present := src.LookupBool(section, kf[0]); present && !ambiguous {
			cmd.AddBool(kf[1], v)
		}
	}
}

// handleOneShotServiceSection copies the source unit's [Service] entries
// (skipping ExecStart, which the caller has already set to the assembled
// command line) into out, then fills in the oneshot defaults every
// create-and-forget quadlet kind (volume, network, image, build) shares, matching
// handle_one_shot_service_section.
func handleOneShotServiceSection(src, out *unitfile.Unit, remainAfterExit bool) {
	if s := src.Section(ServiceSection); s != nil {
		for _, e := range s.Entries {
			if e.Key == "ExecStart" {
				continue
			}
			out.Append(ServiceSection, e.Key, e.Value)
		}
	}
	if !out.HasKey(ServiceSection, "SyslogIdentifier") {
		out.Set(ServiceSection, "SyslogIdentifier", "%N")
	}
	if !out.HasKey(ServiceSection, "Type") {
		out.Set(ServiceSection, "Type", "oneshot")
	}
	if remainAfterExit && !out.HasKey(ServiceSection, "RemainAfterExit") {
		out.Set(ServiceSection, "RemainAfterExit", "yes")
	}
}

// handleVolumes resolves every Volume= value's source against ctx and
// appends the resulting --volume flags, recording a Requires=/After= pair
// for any sibling .volume/.image unit.
func handleVolumes(ctx *Context, src *unitfile.Unit, section string, out *unitfile.Unit, cmd *engine.Command) error {
	for _, raw := range src.LookupAll(section, "Volume") {
		value, dep, err := assemble.NormalizeVolume(raw, ctx.UnitDir, ctx.Resolver)
		if err != nil {
			return newError(KindResolveErr, src.Path, "%s", err)
		}
		if dep != "" {
			out.Append(UnitSection, "Requires", dep)
			out.Append(UnitSection, "After", dep)
		}
		cmd.AddFlag("--volume", value)
	}
	return nil
}

// setResourceName records the engine-facing name a translator picked for
// its unit's resource (a container/pod name, or a mangled/overridden
// volume or network name) so sibling units referencing this one by file
// name resolve to the right resource, not just the file-name-derived
// default computed at index time.
func setResourceName(resolver Resolver, fileName, resourceName string) {
	resolver.SetResourceName(fileName, resourceName)
}

// handleSetWorkingDirectory implements SetWorkingDirectory=: "yaml"/"file"
// derive [Service]/WorkingDirectory from the Yaml=/File= path (kube/build
// only), "unit" derives it from the quadlet unit file's own directory, and
// any other value is treated as a build context (path or URL, .build
// only) and returned to the caller as-is. It never overwrites a
// WorkingDirectory= the source unit already set explicitly.
func handleSetWorkingDirectory(src, out *unitfile.Unit, section string) (context string, err error) {
	setWorkingDir, ok := src.LookupLast(section, "SetWorkingDirectory")
	if !ok || setWorkingDir == "" {
		return "", nil
	}

	var relativeTo string
	switch strings.ToLower(setWorkingDir) {
	case "yaml":
		if section != KubeSection {
			return "", newError(KindValueError, src.Path, "SetWorkingDirectory=yaml is only supported for .kube files")
		}
		relativeTo, ok = src.LookupLast(section, "Yaml")
		if !ok || relativeTo == "" {
			return "", newError(KindValueError, src.Path, "no Yaml key specified")
		}
	case "file":
		if section != BuildSection {
			return "", newError(KindValueError, src.Path, "SetWorkingDirectory=file is only supported for .build files")
		}
		relativeTo, ok = src.LookupLast(section, "File")
		if !ok || relativeTo == "" {
			return "", newError(KindValueError, src.Path, "no File key specified")
		}
	case "unit":
		relativeTo = src.Path
	default:
		if section != BuildSection {
			return "", newError(KindValueError, src.Path, "unsupported value %q for key SetWorkingDirectory", setWorkingDir)
		}
		context = setWorkingDir
		if !filepath.IsAbs(context) {
			relativeTo = src.Path
		}
	}

	if relativeTo != "" && !isURL(context) {
		if wd, ok := src.LookupLast(ServiceSection, "WorkingDirectory"); ok && wd != "" {
			return context, nil
		}
		fileInWorkingDir := absoluteFromUnit(relativeTo, filepath.Dir(src.Path))
		out.Append(ServiceSection, "WorkingDirectory", filepath.Dir(fileInWorkingDir))
	}

	return context, nil
}

// lookupAndAddString appends flag/value for every (sourceKey, flag) pair
// whose value is non-empty, matching lookup_and_add_string.
func lookupAndAddString(src *unitfile.Unit, section string, keys [][2]string, cmd *engine.Command) {
	for _, kf := range keys {
		if v, ok := src.LookupLast(section, kf[0]); ok && v != "" {
			cmd.AddFlag(kf[1], v)
		}
	}
}
