package translate

import (
	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// PodTranslator turns a .pod unit into a forking service that creates,
// starts, and tears down a shared pod for its member containers.
type PodTranslator struct{}

func (PodTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, PodSection, SupportedPodKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, PodSection, XPodSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	podName, _ := src.LookupLast(PodSection, "PodName")
	if podName == "" {
		podName = stem(src.Path)
	}

	// Member .container units declare their side of this relationship via
	// Pod=; ContainerTranslator.handlePod records the back-reference in the
	// resolver when each member is translated, so the pod unit can order
	// itself ahead of every container that joins it.
	for _, containerService := range ctx.Resolver.PodMembers(src.Path) {
		out.Append(UnitSection, "Wants", containerService)
		out.Append(UnitSection, "Before", containerService)
	}

	if !out.HasKey(ServiceSection, "SyslogIdentifier") {
		out.Set(ServiceSection, "SyslogIdentifier", "%N")
	}

	start := newBaseCommand(ctx, src, PodSection, "pod start")
	start.Add(podName)
	out.Append(ServiceSection, "ExecStart", engine.ExecLine(start.Args))

	stop := newBaseCommand(ctx, src, PodSection, "pod stop")
	stop.Add("--ignore")
	stopTimeout := "10"
	if v, ok := src.LookupLast(PodSection, "StopTimeout"); ok && v != "" {
		stopTimeout = v
	}
	stop.Add("--time=" + stopTimeout)
	stop.Add(podName)
	out.Append(ServiceSection, "ExecStop", engine.ExecLine(stop.Args))

	stopPost := newBaseCommand(ctx, src, PodSection, "pod rm")
	stopPost.AddSlice([]string{"--ignore", "--force", podName})
	out.Append(ServiceSection, "ExecStopPost", engine.ExecLine(stopPost.Args))

	startPre := newBaseCommand(ctx, src, PodSection, "pod create")
	startPre.Add("--infra-conmon-pidfile=%t/%N.pid")
	startPre.Add("--replace")

	if exitPolicy, ok := src.LookupLast(PodSection, "ExitPolicy"); ok && exitPolicy != "" {
		startPre.Add("--exit-policy=" + exitPolicy)
	} else {
		startPre.Add("--exit-policy=stop")
	}

	if err := handleUser(ctx, src, PodSection, startPre); err != nil {
		return nil, nil, err
	}

	lookupAndAddAllStrings(src, PodSection, [][2]string{{"PublishPort", "--publish"}}, startPre)

	lookupAndAddAllKeyVals(src, PodSection, [][2]string{{"Label", "--label"}}, startPre)

	if err := handleNetworks(ctx, src, PodSection, out, startPre); err != nil {
		return nil, nil, err
	}

	lookupAndAddString(src, PodSection, [][2]string{
		{"IP", "--ip"},
		{"IP6", "--ip6"},
		{"ShmSize", "--shm-size"},
	}, startPre)

	lookupAndAddAllStrings(src, PodSection, [][2]string{
		{"NetworkAlias", "--network-alias"},
		{"DNS", "--dns"},
		{"DNSOption", "--dns-option"},
		{"DNSSearch", "--dns-search"},
		{"AddHost", "--add-host"},
		{"HostName", "--hostname"},
	}, startPre)

	if err := handleVolumes(ctx, src, PodSection, out, startPre); err != nil {
		return nil, nil, err
	}

	startPre.Add("--infra-name")
	startPre.Add(podName + "-infra")
	startPre.Add("--name")
	startPre.Add(podName)

	args, err := src.LookupAllArgs(PodSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	startPre.AddSlice(args)

	out.Append(ServiceSection, "ExecStartPre", engine.ExecLine(startPre.Args))

	out.Append(ServiceSection, "Environment", "PODMAN_SYSTEMD_UNIT=%n")
	out.Set(ServiceSection, "Type", "forking")
	out.Set(ServiceSection, "Restart", "on-failure")
	out.Set(ServiceSection, "PIDFile", "%t/%N.pid")

	setResourceName(ctx.Resolver, src.Path, podName)

	return out, warnings, nil
}
