package translate

// Section names as they appear in source quadlet units.
const (
	UnitSection      = "Unit"
	ServiceSection   = "Service"
	InstallSection   = "Install"
	BuildSection     = "Build"
	ContainerSection = "Container"
	ImageSection     = "Image"
	KubeSection      = "Kube"
	NetworkSection   = "Network"
	PodSection       = "Pod"
	QuadletSection   = "Quadlet"
	VolumeSection    = "Volume"
)

// X- prefixed sections a translator renames the source section to, so
// systemd itself ignores directives it doesn't understand.
const (
	XBuildSection     = "X-Build"
	XContainerSection = "X-Container"
	XImageSection     = "X-Image"
	XKubeSection      = "X-Kube"
	XNetworkSection   = "X-Network"
	XPodSection       = "X-Pod"
	XQuadletSection   = "X-Quadlet"
	XVolumeSection    = "X-Volume"
)

// SupportedExtensions lists the recognized quadlet unit file extensions.
var SupportedExtensions = []string{"build", "container", "image", "kube", "network", "pod", "volume"}

// SupportedBuildKeys, ... enumerate every key a translator will read from
// its kind's section; check_for_unknown_keys rejects anything else.
var SupportedBuildKeys = []string{
	"Annotation", "Arch", "AuthFile", "ContainersConfModule", "DNS", "DNSOption",
	"DNSSearch", "Environment", "File", "ForceRM", "GlobalArgs", "GroupAdd",
	"ImageTag", "Label", "Network", "PodmanArgs", "Pull", "Retry", "RetryDelay",
	"Secret", "ServiceName", "SetWorkingDirectory", "Target", "TLSVerify",
	"Variant", "Volume",
}

var SupportedContainerKeys = []string{
	"AddCapability", "AddDevice", "AddHost", "Annotation", "AutoUpdate",
	"CgroupsMode", "ContainerName", "ContainersConfModule", "DNS", "DNSOption",
	"DNSSearch", "DropCapability", "Entrypoint", "Environment",
	"EnvironmentFile", "EnvironmentHost", "Exec", "ExposeHostPort", "GIDMap",
	"GlobalArgs", "Group", "GroupAdd", "HealthCmd", "HealthInterval",
	"HealthOnFailure", "HealthRetries", "HealthStartPeriod", "HealthStartupCmd",
	"HealthStartupInterval", "HealthStartupRetries", "HealthStartupSuccess",
	"HealthStartupTimeout", "HealthTimeout", "HostName", "HostUser", "HostGroup",
	"Image", "IP", "IP6",
	"Label", "LogDriver", "LogOpt", "Mask", "Memory", "Mount", "Network",
	"NetworkAlias", "NoNewPrivileges", "Notify", "PidsLimit", "PodmanArgs",
	"Pod", "PublishPort", "Pull", "ReloadCmd", "ReloadSignal", "Retry",
	"RetryDelay", "ReadOnly", "ReadOnlyTmpfs", "RemapGid", "RemapUid",
	"RemapUidSize", "RemapUidRanges", "RemapGidRanges", "RemapUsers", "Rootfs", "RunInit", "SeccompProfile",
	"SecurityLabelDisable", "SecurityLabelFileType", "SecurityLabelLevel",
	"SecurityLabelNested", "SecurityLabelType", "Secret", "ServiceName",
	"ShmSize", "StartWithPod", "StopSignal", "StopTimeout", "SubGIDMap",
	"SubUIDMap", "Sysctl", "Timezone", "Tmpfs", "UIDMap", "Ulimit", "Unmask",
	"User", "UserNS", "VolatileTmp", "Volume", "WorkingDir",
}

var SupportedImageKeys = []string{
	"AllTags", "Arch", "AuthFile", "CertDir", "ContainersConfModule", "Creds",
	"DecryptionKey", "GlobalArgs", "Image", "ImageTag", "PodmanArgs", "Retry",
	"RetryDelay", "OS", "ServiceName", "TLSVerify", "Variant",
}

var SupportedKubeKeys = []string{
	"AutoUpdate", "ConfigMap", "ContainersConfModule", "ExitCodePropagation",
	"GlobalArgs", "KillMode", "KubeDownForce", "LogDriver", "LogOpt", "Network",
	"PodmanArgs", "PublishPort", "RemapGid", "RemapUid", "RemapUidSize",
	"RemapUsers", "ServiceName", "SetWorkingDirectory", "UserNS", "Yaml",
}

var SupportedNetworkKeys = []string{
	"ContainersConfModule", "DisableDNS", "DNS", "Driver", "Gateway",
	"GlobalArgs", "Internal", "IPAMDriver", "IPRange", "IPv6", "Label",
	"NetworkName", "NetworkDeleteOnStop", "Options", "PodmanArgs",
	"ServiceName", "Subnet",
}

var SupportedPodKeys = []string{
	"AddHost", "ContainersConfModule", "DNS", "DNSOption", "DNSSearch",
	"ExitPolicy", "GIDMap", "GlobalArgs", "HostName", "IP", "IP6", "Label", "Network",
	"NetworkAlias", "PodmanArgs", "PodName", "PublishPort", "RemapGid",
	"RemapUid", "RemapUidSize", "RemapUsers", "ServiceName", "ShmSize",
	"StopTimeout", "SubGIDMap", "SubUIDMap", "UIDMap", "UserNS", "Volume",
}

var SupportedQuadletKeys = []string{"DefaultDependencies"}

var SupportedServiceKeys = []string{"WorkingDirectory"}

var SupportedVolumeKeys = []string{
	"ContainersConfModule", "Copy", "Device", "Driver", "GlobalArgs", "Group",
	"Image", "Label", "Options", "PodmanArgs", "ServiceName", "Type", "User",
	"VolumeName",
}

// UnitDependencyKeys lists the [Unit] keys copied and augmented verbatim
// from a source unit into its generated service unit.
var UnitDependencyKeys = []string{
	"After", "Before", "BindsTo", "Conflicts", "OnFailure", "OnSuccess",
	"PartOf", "PropagatesReloadTo", "PropagatesStopTo", "ReloadPropagatedFrom",
	"Requires", "Requisite", "StopPropagatedFrom", "Upholds", "Wants",
}

// UnsupportedServiceKeys are [Service] keys known to conflict with the
// generator's own service management; using them only produces a warning,
// never a hard failure, so as not to break existing user units.
var UnsupportedServiceKeys = []string{
	"ExecStart", "ExecStop", "ExecStopPost", "ExecReload",
}

const autoUpdateLabel = "io.containers.autoupdate"
