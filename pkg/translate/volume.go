package translate

import (
	"strconv"

	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// VolumeTranslator turns a .volume unit into a oneshot `podman volume
// create` service.
type VolumeTranslator struct{}

func (VolumeTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, VolumeSection, SupportedVolumeKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, VolumeSection, XVolumeSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	volumeName, _ := src.LookupLast(VolumeSection, "VolumeName")
	if volumeName == "" {
		volumeName = "systemd-" + stem(src.Path)
	}

	cmd := newBaseCommand(ctx, src, VolumeSection, "volume create")
	cmd.Add("--ignore")

	driver, _ := src.LookupLast(VolumeSection, "Driver")
	if driver != "" {
		cmd.AddFlag("--driver", driver)
	}

	if driver == "image" {
		image, ok := src.LookupLast(VolumeSection, "Image")
		if !ok || image == "" {
			return nil, nil, newError(KindValueError, src.Path, "the key Image is mandatory when using the image driver")
		}
		resolvedImage := image
		if info, ok := ctx.Resolver.Lookup(image); ok {
			resolvedImage = info.ResourceName
			out.Append(UnitSection, "Requires", info.ServiceFileName)
			out.Append(UnitSection, "After", info.ServiceFileName)
		}
		cmd.AddFlag("--opt", "image="+resolvedImage)
	} else {
		var opts []string
		if src.HasKey(VolumeSection, "User") {
			uid, _ := src.Section(VolumeSection).LookupInt("User")
			opts = append(opts, "uid="+strconv.FormatInt(uid, 10))
		}
		if src.HasKey(VolumeSection, "Group") {
			gid, _ := src.Section(VolumeSection).LookupInt("Group")
			opts = append(opts, "gid="+strconv.FormatInt(gid, 10))
		}
		if v, ambiguous, present := src.LookupBool(VolumeSection, "Copy"); present && !ambiguous {
			if v {
				cmd.Add("--opt")
				cmd.Add("copy")
			} else {
				cmd.Add("--opt")
				cmd.Add("nocopy")
			}
		}

		device, _ := src.LookupLast(VolumeSection, "Device")
		deviceValid := device != ""
		if deviceValid {
			cmd.AddFlag("--opt", "device="+device)
		}

		if devType, ok := src.LookupLast(VolumeSection, "Type"); ok && devType != "" {
			if !deviceValid {
				return nil, nil, newError(KindValueError, src.Path, "Type= requires Device= to be set")
			}
			cmd.AddFlag("--opt", "type="+devType)
			if devType == "bind" {
				out.Append(UnitSection, "RequiresMountsFor", device)
			}
		}

		if mountOpts, ok := src.LookupLast(VolumeSection, "Options"); ok && mountOpts != "" {
			if !deviceValid {
				return nil, nil, newError(KindValueError, src.Path, "Options= requires Device= to be set")
			}
			opts = append(opts, mountOpts)
		}

		if len(opts) > 0 {
			cmd.AddFlag("--opt", "o="+joinComma(opts))
		}
	}

	lookupAndAddAllKeyVals(src, VolumeSection, [][2]string{{"Label", "--label"}}, cmd)

	args, err := src.LookupAllArgs(VolumeSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(args)

	cmd.Add(volumeName)

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(cmd.Args))
	handleOneShotServiceSection(src, out, true)
	setResourceName(ctx.Resolver, src.Path, volumeName)

	return out, warnings, nil
}

func joinComma(vals []string) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
