package translate

import (
	"strconv"
	"strings"

	"github.com/qgen/quadlet-gen/pkg/assemble"
	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/idmap"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// ContainerTranslator turns a .container unit into its .service unit.
type ContainerTranslator struct{}

func (ContainerTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, ContainerSection, SupportedContainerKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, ContainerSection, XContainerSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	cmd := newBaseCommand(ctx, src, ContainerSection, "run")

	name, _ := src.LookupLast(ContainerSection, "ContainerName")
	if name == "" {
		name = "systemd-" + stem(src.Path)
	}
	cmd.AddFlag("--name", name)
	setResourceName(ctx.Resolver, src.Path, name)
	cmd.Add("--cidfile=%t/%N.cid")
	cmd.Add("--replace")
	cmd.Add("--rm")
	cmd.Add("-d")

	logDriver, ok := src.LookupLast(ContainerSection, "LogDriver")
	if !ok || logDriver == "" {
		logDriver = "passthrough"
	}
	cmd.AddFlag("--log-driver", logDriver)

	if err := handleUser(ctx, src, ContainerSection, cmd); err != nil {
		return nil, nil, err
	}

	if err := handleNetworks(ctx, src, ContainerSection, out, cmd); err != nil {
		return nil, nil, err
	}

	if err := handlePod(ctx, src, out, cmd); err != nil {
		return nil, nil, err
	}

	for _, raw := range src.LookupAll(ContainerSection, "PublishPort") {
		pp, err := assemble.ParsePublishPort(raw)
		if err != nil {
			return nil, nil, newError(KindValueError, src.Path, "%s", err)
		}
		cmd.AddFlag("--publish", assemble.FormatPublishPort(pp))
	}

	for _, raw := range src.LookupAll(ContainerSection, "ExposeHostPort") {
		if !assemble.IsPortRangeSpec(raw) {
			return nil, nil, newError(KindValueError, src.Path, "invalid ExposeHostPort value %q", raw)
		}
		cmd.AddFlag("--expose", raw)
	}

	for _, raw := range src.LookupAll(ContainerSection, "Mount") {
		value, dep, err := assemble.Normalize(raw, ctx.UnitDir, ctx.Resolver)
		if err != nil {
			return nil, nil, newError(KindResolveErr, src.Path, "%s", err)
		}
		if dep != "" {
			out.Append(UnitSection, "Requires", dep)
			out.Append(UnitSection, "After", dep)
		}
		cmd.AddFlag("--mount", value)
	}

	if err := handleVolumes(ctx, src, ContainerSection, out, cmd); err != nil {
		return nil, nil, err
	}

	lookupAndAddAllKeyVals(src, ContainerSection, [][2]string{{"Environment", "--env"}}, cmd)
	cmd.AddAll("--env-file", src.LookupAll(ContainerSection, "EnvironmentFile"))
	lookupAndAddAllKeyVals(src, ContainerSection, [][2]string{{"Label", "--label"}}, cmd)
	lookupAndAddAllKeyVals(src, ContainerSection, [][2]string{{"Annotation", "--annotation"}}, cmd)

	cmd.AddAll("--cap-add", src.LookupAll(ContainerSection, "AddCapability"))
	cmd.AddAll("--cap-drop", src.LookupAll(ContainerSection, "DropCapability"))

	for _, opt := range securityOptTokens(src) {
		cmd.AddFlag("--security-opt", opt)
	}

	args, err := src.LookupAllArgs(ContainerSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(args)

	image, _ := src.LookupLast(ContainerSection, "Image")
	if image == "" {
		return nil, nil, newError(KindValueError, src.Path, "Image= is required")
	}
	cmd.Add(image)

	execArgs, err := src.LookupLastArgs(ContainerSection, "Exec")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(execArgs)

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(cmd.Args))
	out.Set(ServiceSection, "Type", "notify")
	out.Set(ServiceSection, "NotifyAccess", "all")
	out.Set(ServiceSection, "KillMode", "mixed")
	if s := src.Section(ServiceSection); s != nil {
		for _, e := range s.Entries {
			if e.Key == "ExecStart" {
				continue
			}
			out.Append(ServiceSection, e.Key, e.Value)
		}
	}

	return out, warnings, nil
}

func stem(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

func securityOptTokens(src *unitfile.Unit) []string {
	var opts []string
	if v, ok := src.LookupLast(ContainerSection, "SecurityLabelType"); ok && v != "" {
		opts = append(opts, "label=type:"+v)
	}
	if v, ok := src.LookupLast(ContainerSection, "SecurityLabelLevel"); ok && v != "" {
		opts = append(opts, "label=level:"+v)
	}
	if v, ok := src.LookupLast(ContainerSection, "SecurityLabelFileType"); ok && v != "" {
		opts = append(opts, "label=filetype:"+v)
	}
	if v, ambiguous, present := src.LookupBool(ContainerSection, "SecurityLabelNested"); present && !ambiguous && v {
		opts = append(opts, "label=nested")
	}
	if v, ambiguous, present := src.LookupBool(ContainerSection, "SecurityLabelDisable"); present && !ambiguous && v {
		opts = append(opts, "label=disable")
	}
	return opts
}

// handleNetworks resolves every Network= value against ctx.Resolver and
// appends the resulting --network flags, recording a Requires=/After=
// pair for any sibling-unit reference.
func handleNetworks(ctx *Context, src *unitfile.Unit, section string, out *unitfile.Unit, cmd *engine.Command) error {
	for _, raw := range src.LookupAll(section, "Network") {
		if raw == "" {
			continue
		}
		n, err := assemble.ParseNetwork(raw)
		if err != nil {
			return newError(KindValueError, src.Path, "%s", err)
		}
		flag, dep, err := assemble.Resolve(n, ctx.Resolver)
		if err != nil {
			return newError(KindResolveErr, src.Path, "%s", err)
		}
		if dep != "" {
			out.Append(UnitSection, "Requires", dep)
			out.Append(UnitSection, "After", dep)
		}
		cmd.AddFlag("--network", flag)
	}
	return nil
}

// handlePod resolves Pod= against the sibling .pod unit, adds --pod to the
// run command, gates the container's service on the pod's, and registers
// this unit's generated service name as one of that pod's members so the
// pod's own service can order itself ahead of it.
func handlePod(ctx *Context, src *unitfile.Unit, out *unitfile.Unit, cmd *engine.Command) error {
	podRef, ok := src.LookupLast(ContainerSection, "Pod")
	if !ok || podRef == "" {
		return nil
	}
	info, ok := ctx.Resolver.Lookup(podRef)
	if !ok {
		return newError(KindResolveErr, src.Path, "Pod %q not found among sibling units", podRef)
	}
	cmd.AddFlag("--pod", info.ResourceName)
	out.Append(UnitSection, "BindsTo", info.ServiceFileName)
	out.Append(UnitSection, "After", info.ServiceFileName)

	startWithPod, ambiguous, present := src.LookupBool(ContainerSection, "StartWithPod")
	if !present || ambiguous || startWithPod {
		if selfInfo, ok := ctx.Resolver.Lookup(src.Path); ok {
			ctx.Resolver.RegisterPodMember(podRef, selfInfo.ServiceFileName)
		}
	}
	return nil
}

// handleUser implements handle_user + handle_user_mappings/handle_user_remap:
// a plain --user flag when User=/Group= are set without a namespace mode,
// or an id-mapped/--userns invocation when RemapUsers=/UserNS= is present.
func handleUser(ctx *Context, src *unitfile.Unit, section string, cmd *engine.Command) error {
	user, hasUser := src.LookupLast(section, "User")
	group, hasGroup := src.LookupLast(section, "Group")

	switch {
	case hasUser && user != "" && hasGroup && group != "":
		cmd.AddFlag("--user", user+":"+group)
	case hasUser && user != "":
		cmd.AddFlag("--user", user)
	}

	if userns, ok := src.LookupLast(section, "UserNS"); ok && userns != "" {
		cmd.AddFlag("--userns", userns)
		for _, m := range src.LookupAllStrv(section, "UIDMap") {
			cmd.AddFlag("--uidmap", m)
		}
		for _, m := range src.LookupAllStrv(section, "GIDMap") {
			cmd.AddFlag("--gidmap", m)
		}
		return nil
	}
	for _, m := range src.LookupAllStrv(section, "UIDMap") {
		cmd.AddFlag("--uidmap", m)
	}
	for _, m := range src.LookupAllStrv(section, "GIDMap") {
		cmd.AddFlag("--gidmap", m)
	}
	if src.HasKey(section, "UIDMap") || src.HasKey(section, "GIDMap") {
		return nil
	}

	remapUsers, hasRemap := src.LookupLast(section, "RemapUsers")
	if !hasRemap {
		return nil
	}

	switch idmap.Mode(remapUsers) {
	case idmap.ModeAuto:
		uidMaps := src.LookupAllStrv(section, "RemapUid")
		gidMaps := src.LookupAllStrv(section, "RemapGid")
		size := uint64(0)
		if v, ok := src.Section(section).LookupInt("RemapUidSize"); ok && v > 0 {
			size = uint64(v)
		}
		flag, err := idmap.UserNSFlag(idmap.ModeAuto, uidMaps, gidMaps, size)
		if err != nil {
			return newError(KindIdMapError, src.Path, "%s", err)
		}
		cmd.AddFlag("--userns", flag)
	case idmap.ModeKeepID:
		uidMaps := src.LookupAllStrv(section, "RemapUid")
		gidMaps := src.LookupAllStrv(section, "RemapGid")
		flag, err := idmap.UserNSFlag(idmap.ModeKeepID, uidMaps, gidMaps, 0)
		if err != nil {
			return newError(KindIdMapError, src.Path, "%s", err)
		}
		cmd.AddFlag("--userns", flag)
	case idmap.ModeYes:
		return applyNumericIDMap(ctx, src, section, cmd, true)
	case idmap.ModeNo:
		return applyNumericIDMap(ctx, src, section, cmd, false)
	default:
		return newError(KindValueError, src.Path, "unsupported RemapUsers option %q", remapUsers)
	}
	return nil
}

// applyNumericIDMap implements the yes/no numeric id-map algorithms
// (§4.D) using HostUser=/HostGroup= and RemapUidRanges=/RemapGidRanges=,
// resolving names through ctx.IDResolver.
func applyNumericIDMap(ctx *Context, src *unitfile.Unit, section string, cmd *engine.Command, yes bool) error {
	user, _ := src.LookupLast(section, "User")
	group, _ := src.LookupLast(section, "Group")
	hostUser, hasHostUser := src.LookupLast(section, "HostUser")
	hostGroup, hasHostGroup := src.LookupLast(section, "HostGroup")

	userID, err := parseID(ctx, user, true)
	if err != nil {
		return newError(KindIdMapError, src.Path, "invalid User= value: %s", err)
	}
	groupID, err := parseID(ctx, group, false)
	if err != nil {
		return newError(KindIdMapError, src.Path, "invalid Group= value: %s", err)
	}

	if yes {
		uidRanges, err := idmap.ParseRanges(src.LookupAllStrv(section, "RemapUidRanges"))
		if err != nil {
			return newError(KindIdMapError, src.Path, "%s", err)
		}
		gidRanges, err := idmap.ParseRanges(src.LookupAllStrv(section, "RemapGidRanges"))
		if err != nil {
			return newError(KindIdMapError, src.Path, "%s", err)
		}
		for _, row := range idmap.ComputeYes(userID, uidRanges) {
			cmd.AddFlag("--uidmap", row.String())
		}
		for _, row := range idmap.ComputeYes(groupID, gidRanges) {
			cmd.AddFlag("--gidmap", row.String())
		}
		return nil
	}

	if !hasHostUser || hostUser == "" {
		return nil
	}
	hostUserID, err := resolveHostID(ctx, hostUser, true)
	if err != nil {
		return newError(KindIdMapError, src.Path, "invalid HostUser= value: %s", err)
	}
	for _, row := range idmap.ComputeNoHostMapped(userID, hostUserID) {
		cmd.AddFlag("--uidmap", row.String())
	}

	if !hasHostGroup || hostGroup == "" {
		return nil
	}
	hostGroupID, err := resolveHostID(ctx, hostGroup, false)
	if err != nil {
		return newError(KindIdMapError, src.Path, "invalid HostGroup= value: %s", err)
	}
	for _, row := range idmap.ComputeNoHostMapped(groupID, hostGroupID) {
		cmd.AddFlag("--gidmap", row.String())
	}
	return nil
}

// parseID turns a User=/Group= value into a numeric id, looking names up
// through ctx.IDResolver; an empty value is id 0.
func parseID(ctx *Context, v string, isUser bool) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	return resolveHostID(ctx, v, isUser)
}

func resolveHostID(ctx *Context, nameOrID string, isUser bool) (uint64, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 64); err == nil {
		return id, nil
	}
	if ctx.IDResolver == nil {
		return 0, strconv.ErrSyntax
	}
	if isUser {
		return ctx.IDResolver.ResolveUser(nameOrID)
	}
	return ctx.IDResolver.ResolveGroup(nameOrID)
}
