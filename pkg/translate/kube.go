package translate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// KubeTranslator turns a .kube unit into a `podman kube play` service.
type KubeTranslator struct{}

func (KubeTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, KubeSection, SupportedKubeKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, KubeSection, XKubeSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	yamlPath, _ := src.LookupLast(KubeSection, "Yaml")
	if yamlPath == "" {
		return nil, nil, newError(KindValueError, src.Path, "no Yaml key specified")
	}
	yamlPath = absoluteFromUnit(yamlPath, dirOf(src.Path))

	if serviceName, has := src.LookupLast(KubeSection, "ServiceName"); !has || serviceName == "" {
		if name := readKubeMetadataName(yamlPath); name != "" {
			warnings = append(warnings, fmt.Sprintf("no ServiceName= set; using metadata.name %q from %s for logging", name, yamlPath))
		}
	}

	// Only mixed or control-group work well: mixed lets conmon manage the
	// container's exit, control-group tears down the whole cgroup at once.
	switch killMode, hasKillMode := src.LookupLast(KubeSection, "KillMode"); {
	case !hasKillMode || killMode == "":
		out.Set(ServiceSection, "KillMode", "mixed")
	case killMode == "mixed" || killMode == "control-group":
		out.Set(ServiceSection, "KillMode", killMode)
	default:
		return nil, nil, newError(KindValueError, src.Path, "invalid KillMode %q for .kube unit", killMode)
	}

	out.Append(ServiceSection, "Environment", "PODMAN_SYSTEMD_UNIT=%n")

	switch serviceType, hasType := src.LookupLast(ServiceSection, "Type"); {
	case !hasType || serviceType == "" || serviceType == "notify":
		out.Set(ServiceSection, "Type", "notify")
		out.Set(ServiceSection, "NotifyAccess", "all")
	case serviceType != "oneshot":
		return nil, nil, newError(KindValueError, src.Path, "invalid service Type %q for .kube unit", serviceType)
	}

	if !out.HasKey(ServiceSection, "SyslogIdentifier") {
		out.Set(ServiceSection, "SyslogIdentifier", "%N")
	}

	start := newBaseCommand(ctx, src, KubeSection, "kube play")
	start.AddSlice([]string{"--replace", "--service-container=true"})

	if ecp, ok := src.LookupLast(KubeSection, "ExitCodePropagation"); ok && ecp != "" {
		start.Add("--service-exit-code-propagation=" + ecp)
	}

	lookupAndAddString(src, KubeSection, [][2]string{{"LogDriver", "--log-driver"}}, start)
	lookupAndAddAllStrings(src, KubeSection, [][2]string{{"LogOpt", "--log-opt"}}, start)

	if err := handleUser(ctx, src, KubeSection, start); err != nil {
		return nil, nil, err
	}
	if err := handleNetworks(ctx, src, KubeSection, out, start); err != nil {
		return nil, nil, err
	}

	for _, update := range src.LookupAllStrv(KubeSection, "AutoUpdate") {
		annotationSuffix := ""
		updateType := update
		if before, after, found := strings.Cut(update, "/"); found {
			annotationSuffix = "/" + before
			updateType = after
		}
		start.Add("--annotation")
		start.Add(autoUpdateLabel + annotationSuffix + "=" + updateType)
	}

	for _, configMap := range src.LookupAllStrv(KubeSection, "ConfigMap") {
		start.Add("--configmap")
		start.Add(absoluteFromUnit(configMap, dirOf(src.Path)))
	}

	lookupAndAddAllStrings(src, KubeSection, [][2]string{{"PublishPort", "--publish"}}, start)

	args, err := src.LookupAllArgs(KubeSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	start.AddSlice(args)
	start.Add(yamlPath)

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(start.Args))

	// Use ExecStopPost so cleanup happens even after a failed start;
	// otherwise the pods and containers kube play created are left behind.
	stop := newBaseCommand(ctx, src, KubeSection, "kube down")
	if force, ambiguous, present := src.LookupBool(KubeSection, "KubeDownForce"); present && !ambiguous {
		stop.AddBool("--force", force)
	}
	stop.Add(yamlPath)
	out.Append(ServiceSection, "ExecStopPost", engine.ExecLine(stop.Args))

	if _, err := handleSetWorkingDirectory(src, out, KubeSection); err != nil {
		return nil, nil, err
	}

	if s := src.Section(ServiceSection); s != nil {
		for _, e := range s.Entries {
			if e.Key == "ExecStart" || e.Key == "ExecStopPost" || e.Key == "Type" ||
				e.Key == "NotifyAccess" || e.Key == "KillMode" {
				continue
			}
			out.Append(ServiceSection, e.Key, e.Value)
		}
	}

	return out, warnings, nil
}

// readKubeMetadataName best-effort reads a Kubernetes manifest's top-level
// metadata.name, used only to produce a friendlier log field when
// ServiceName= is unset. Any read or parse failure is silently ignored;
// this is a display nicety, not part of translation, and never fails a
// .kube unit's translation.
func readKubeMetadataName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var doc struct {
		Metadata struct {
			Name string `yaml:"name"`
		} `yaml:"metadata"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.Metadata.Name
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}
