package translate

import (
	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// ImageTranslator turns a .image unit into a oneshot `podman image pull`
// service.
type ImageTranslator struct{}

func (ImageTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, ImageSection, SupportedImageKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, ImageSection, XImageSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	imageName, _ := src.LookupLast(ImageSection, "Image")
	if imageName == "" {
		return nil, nil, newError(KindValueError, src.Path, "no Image key specified")
	}

	cmd := newBaseCommand(ctx, src, ImageSection, "image pull")

	lookupAndAddString(src, ImageSection, [][2]string{
		{"Arch", "--arch"},
		{"AuthFile", "--authfile"},
		{"CertDir", "--cert-dir"},
		{"Creds", "--creds"},
		{"DecryptionKey", "--decryption-key"},
		{"OS", "--os"},
		{"Variant", "--variant"},
		{"Retry", "--retry"},
		{"RetryDelay", "--retry-delay"},
	}, cmd)

	lookupAndAddBool(src, ImageSection, [][2]string{
		{"AllTags", "--all-tags"},
		{"TLSVerify", "--tls-verify"},
	}, cmd)

	args, err := src.LookupAllArgs(ImageSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(args)

	cmd.Add(imageName)

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(cmd.Args))
	handleOneShotServiceSection(src, out, true)

	resourceName := imageName
	if tag, ok := src.LookupLast(ImageSection, "ImageTag"); ok && tag != "" {
		resourceName = tag
	}
	setResourceName(ctx.Resolver, src.Path, resourceName)

	return out, warnings, nil
}
