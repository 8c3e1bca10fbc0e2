package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerTranslateBasicRunCommand(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "docker.io/library/nginx")

	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, warnings, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	execStart, ok := out.LookupLast(ServiceSection, "ExecStart")
	require.True(t, ok)
	assert.Contains(t, execStart, "/usr/bin/podman run")
	assert.Contains(t, execStart, "--name systemd-app")
	assert.Contains(t, execStart, "--log-driver passthrough")
	assert.Contains(t, execStart, "docker.io/library/nginx")
	assert.Equal(t, "notify", mustLookup(t, out, ServiceSection, "Type"))
	assert.Equal(t, "all", mustLookup(t, out, ServiceSection, "NotifyAccess"))
	assert.Equal(t, "mixed", mustLookup(t, out, ServiceSection, "KillMode"))
}

func TestContainerTranslateMissingImageErrors(t *testing.T) {
	src := newSourceUnit("app.container")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	_, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindValueError, te.Kind)
}

func TestContainerTranslateUnknownKeyErrors(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "NotAKey", "value")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	_, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindUnknownKey, te.Kind)
}

func TestContainerTranslateExplicitContainerName(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "ContainerName", "my-nginx")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "--name my-nginx")
}

func TestContainerTranslatePublishPortValidatesAndFormats(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "PublishPort", "8080:80")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "--publish 8080:80")
}

func TestContainerTranslatePublishPortInvalidErrors(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "PublishPort", "70000:80")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	_, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
}

func TestContainerTranslateExposeHostPortRange(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "ExposeHostPort", "9000-9010")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "--expose 9000-9010")
}

func TestContainerTranslateExposeHostPortInvalidErrors(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "ExposeHostPort", "not-a-port")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	_, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
}

func TestContainerTranslateMountResolvesVolumeUnitDependency(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "Mount", "type=volume,source=data.volume,dst=/data")
	resolver := newFakeResolver(unitInfoFor("app.container"), unitInfoFor("data.volume"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "Requires"), "data-volume.service")
	assert.Contains(t, out.LookupAll(UnitSection, "After"), "data-volume.service")
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "systemd-data")
}

func TestContainerTranslateVolumeSourceResolution(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "Volume", "data.volume:/data")
	resolver := newFakeResolver(unitInfoFor("app.container"), unitInfoFor("data.volume"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "Requires"), "data-volume.service")
	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "--volume systemd-data:/data")
}

func TestContainerTranslatePodMembershipRegistersBackReference(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "Pod", "mypod.pod")
	resolver := newFakeResolver(unitInfoFor("app.container"), unitInfoFor("mypod.pod"))

	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "BindsTo"), "mypod-pod.service")
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "--pod mypod")
	assert.Equal(t, []string{"app.service"}, resolver.PodMembers("mypod.pod"))
}

func TestContainerTranslateStartWithPodFalseSkipsPodMembership(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "Pod", "mypod.pod")
	src.Set(ContainerSection, "StartWithPod", "no")
	resolver := newFakeResolver(unitInfoFor("app.container"), unitInfoFor("mypod.pod"))

	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "BindsTo"), "mypod-pod.service")
	assert.Empty(t, resolver.PodMembers("mypod.pod"))
}

func TestContainerTranslateUnknownPodErrors(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "Pod", "missing.pod")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	_, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindResolveErr, te.Kind)
}

func TestContainerTranslateUserAndGroup(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ContainerSection, "User", "1000")
	src.Set(ContainerSection, "Group", "1000")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "--user 1000:1000")
}

func TestContainerTranslateGlobalArgsAndContainersConfModulePrefixCommand(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Append(ContainerSection, "ContainersConfModule", "/etc/containers/foo.conf")
	src.Set(ContainerSection, "GlobalArgs", "--log-level=debug")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "--module /etc/containers/foo.conf")
	assert.Contains(t, execStart, "--log-level=debug run")
}

func TestContainerTranslatePreservesExtraServiceKeys(t *testing.T) {
	src := newSourceUnit("app.container")
	src.Set(ContainerSection, "Image", "nginx")
	src.Set(ServiceSection, "TimeoutStartSec", "30")
	resolver := newFakeResolver(unitInfoFor("app.container"))
	out, _, err := ContainerTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Equal(t, "30", mustLookup(t, out, ServiceSection, "TimeoutStartSec"))
}

func mustLookup(t *testing.T, u interface {
	LookupLast(section, key string) (string, bool)
}, section, key string) string {
	t.Helper()
	v, ok := u.LookupLast(section, key)
	require.True(t, ok, "missing %s/%s", section, key)
	return v
}
