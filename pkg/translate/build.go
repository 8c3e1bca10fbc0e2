package translate

import (
	"path/filepath"
	"strings"

	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// BuildTranslator turns a .build unit into a oneshot `podman build`
// service.
type BuildTranslator struct{}

func (BuildTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, BuildSection, SupportedBuildKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	tags := src.LookupAllStrv(BuildSection, "ImageTag")
	if len(tags) == 0 {
		return nil, nil, newError(KindValueError, src.Path, "no ImageTag key specified")
	}

	out, err := initServiceUnitFile(src, BuildSection, XBuildSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	cmd := newBaseCommand(ctx, src, BuildSection, "build")

	if pull, ok := src.LookupLast(BuildSection, "Pull"); ok && pull != "" {
		cmd.Add("--pull=" + pull)
	}

	lookupAndAddString(src, BuildSection, [][2]string{
		{"Arch", "--arch"},
		{"AuthFile", "--authfile"},
		{"Target", "--target"},
		{"Variant", "--variant"},
		{"Retry", "--retry"},
		{"RetryDelay", "--retry-delay"},
	}, cmd)

	lookupAndAddBool(src, BuildSection, [][2]string{
		{"TLSVerify", "--tls-verify"},
		{"ForceRM", "--force-rm"},
	}, cmd)

	lookupAndAddAllStrings(src, BuildSection, [][2]string{
		{"DNS", "--dns"},
		{"DNSOption", "--dns-option"},
		{"DNSSearch", "--dns-search"},
		{"GroupAdd", "--group-add"},
		{"ImageTag", "--tag"},
	}, cmd)

	lookupAndAddAllKeyVals(src, BuildSection, [][2]string{
		{"Annotation", "--annotation"},
		{"Environment", "--env"},
		{"Label", "--label"},
	}, cmd)

	if err := handleNetworks(ctx, src, BuildSection, out, cmd); err != nil {
		return nil, nil, err
	}

	secrets, err := src.LookupAllArgs(BuildSection, "Secret")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	for _, secret := range secrets {
		cmd.Add("--secret")
		cmd.Add(secret)
	}

	if err := handleVolumes(ctx, src, BuildSection, out, cmd); err != nil {
		return nil, nil, err
	}

	// In order to build an image locally we need either a File= pointing
	// directly at a Containerfile, or a working directory (a local path, a
	// Git repo, or an archive URL) containing everything the build needs.
	context, err := handleSetWorkingDirectory(src, out, BuildSection)
	if err != nil {
		return nil, nil, err
	}
	workingDirectory, ok := out.LookupLast(ServiceSection, "WorkingDirectory")
	if !ok || workingDirectory == "" {
		workingDirectory, _ = src.LookupLast(ServiceSection, "WorkingDirectory")
	}
	filePath, _ := src.LookupLast(BuildSection, "File")

	if workingDirectory == "" && filePath == "" && context == "" {
		return nil, nil, newError(KindValueError, src.Path, "neither SetWorkingDirectory, nor File key specified")
	}

	if filePath != "" {
		cmd.Add("--file")
		cmd.Add(filePath)
	}

	args, err := src.LookupAllArgs(BuildSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(args)

	// The build context (or working directory, for a relative File=) must
	// be the final positional argument.
	switch {
	case context != "":
		cmd.Add(context)
	case !isSystemdSpecifier(filePath) && !filepath.IsAbs(filePath) && !isURL(filePath):
		if workingDirectory == "" {
			return nil, nil, newError(KindValueError, src.Path, "relative File= path requires SetWorkingDirectory=")
		}
		cmd.Add(workingDirectory)
	}

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(cmd.Args))
	handleOneShotServiceSection(src, out, false)
	setResourceName(ctx.Resolver, src.Path, tags[0])

	return out, warnings, nil
}

func isSystemdSpecifier(s string) bool {
	return strings.HasPrefix(s, "%")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "git://") || strings.HasPrefix(s, "github.com/") ||
		strings.HasPrefix(s, "git+")
}
