package translate

import (
	"github.com/qgen/quadlet-gen/pkg/engine"
	"github.com/qgen/quadlet-gen/pkg/unitfile"
)

// NetworkTranslator turns a .network unit into a oneshot `podman network
// create` service.
type NetworkTranslator struct{}

func (NetworkTranslator) Translate(ctx *Context, src *unitfile.Unit) (*unitfile.Unit, []string, error) {
	if err := checkForUnknownKeys(src, NetworkSection, SupportedNetworkKeys); err != nil {
		return nil, nil, err
	}
	warnings := warnUnsupportedServiceKeys(src)

	info, ok := ctx.Resolver.Lookup(src.Path)
	if !ok {
		return nil, nil, newError(KindResolveErr, src.Path, "unit not present in the cross-unit index")
	}

	out, err := initServiceUnitFile(src, NetworkSection, XNetworkSection, info.ServiceFileName)
	if err != nil {
		return nil, nil, err
	}
	if err := handleUnitDependencies(src, out, ctx.Resolver); err != nil {
		return nil, nil, err
	}
	handleDefaultDependencies(src, out, ctx.UserMode)

	networkName, _ := src.LookupLast(NetworkSection, "NetworkName")
	if networkName == "" {
		networkName = "systemd-" + stem(src.Path)
	}

	if deleteOnStop, ambiguous, present := src.LookupBool(NetworkSection, "NetworkDeleteOnStop"); present && !ambiguous && deleteOnStop {
		stop := newBaseCommand(ctx, src, NetworkSection, "network rm")
		stop.Add(networkName)
		out.Append(ServiceSection, "ExecStopPost", engine.ExecLine(stop.Args))
	}

	cmd := newBaseCommand(ctx, src, NetworkSection, "network create")
	cmd.Add("--ignore")

	lookupAndAddBool(src, NetworkSection, [][2]string{
		{"DisableDNS", "--disable-dns"},
		{"Internal", "--internal"},
		{"IPv6", "--ipv6"},
	}, cmd)

	lookupAndAddString(src, NetworkSection, [][2]string{
		{"Driver", "--driver"},
		{"InterfaceName", "--interface-name"},
		{"IPAMDriver", "--ipam-driver"},
	}, cmd)

	lookupAndAddAllStrings(src, NetworkSection, [][2]string{{"DNS", "--dns"}}, cmd)

	subnets := src.LookupAll(NetworkSection, "Subnet")
	gateways := src.LookupAll(NetworkSection, "Gateway")
	ipRanges := src.LookupAll(NetworkSection, "IPRange")

	if len(subnets) == 0 {
		if len(gateways) > 0 || len(ipRanges) > 0 {
			return nil, nil, newError(KindValueError, src.Path, "cannot set Gateway or IPRange without Subnet")
		}
	} else {
		if len(gateways) > len(subnets) {
			return nil, nil, newError(KindValueError, src.Path, "cannot set more gateways than subnets")
		}
		if len(ipRanges) > len(subnets) {
			return nil, nil, newError(KindValueError, src.Path, "cannot set more ranges than subnets")
		}
	}
	for i, subnet := range subnets {
		cmd.AddFlag("--subnet", subnet)
		if i < len(gateways) {
			cmd.AddFlag("--gateway", gateways[i])
		}
		if i < len(ipRanges) {
			cmd.AddFlag("--ip-range", ipRanges[i])
		}
	}

	lookupAndAddAllKeyVals(src, NetworkSection, [][2]string{
		{"Label", "--label"},
		{"Options", "--opt"},
	}, cmd)

	args, err := src.LookupAllArgs(NetworkSection, "PodmanArgs")
	if err != nil {
		return nil, nil, newError(KindValueError, src.Path, "%s", err)
	}
	cmd.AddSlice(args)

	cmd.Add(networkName)

	out.Set(ServiceSection, "ExecStart", engine.ExecLine(cmd.Args))
	handleOneShotServiceSection(src, out, true)
	setResourceName(ctx.Resolver, src.Path, networkName)

	return out, warnings, nil
}
