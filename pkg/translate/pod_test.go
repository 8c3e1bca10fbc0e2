package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPodTranslateBasicLifecycleCommands(t *testing.T) {
	src := newSourceUnit("mypod.pod")
	resolver := newFakeResolver(unitInfoFor("mypod.pod"))
	out, _, err := PodTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)

	start := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, start, "pod start")
	assert.Contains(t, start, "mypod")

	stop := mustLookup(t, out, ServiceSection, "ExecStop")
	assert.Contains(t, stop, "pod stop")
	assert.Contains(t, stop, "--time=10")

	stopPost := mustLookup(t, out, ServiceSection, "ExecStopPost")
	assert.Contains(t, stopPost, "pod rm")
	assert.Contains(t, stopPost, "--force")

	startPre := mustLookup(t, out, ServiceSection, "ExecStartPre")
	assert.Contains(t, startPre, "pod create")
	assert.Contains(t, startPre, "--exit-policy=stop")
	assert.Contains(t, startPre, "--infra-name mypod-infra")
	assert.Contains(t, startPre, "--name mypod")

	assert.Equal(t, "forking", mustLookup(t, out, ServiceSection, "Type"))
	assert.Equal(t, "on-failure", mustLookup(t, out, ServiceSection, "Restart"))
}

func TestPodTranslateCustomStopTimeoutAndExitPolicy(t *testing.T) {
	src := newSourceUnit("mypod.pod")
	src.Set(PodSection, "StopTimeout", "30")
	src.Set(PodSection, "ExitPolicy", "continue")
	resolver := newFakeResolver(unitInfoFor("mypod.pod"))
	out, _, err := PodTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStop"), "--time=30")
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStartPre"), "--exit-policy=continue")
}

func TestPodTranslateWantsBeforeMemberContainers(t *testing.T) {
	src := newSourceUnit("mypod.pod")
	resolver := newFakeResolver(unitInfoFor("mypod.pod"), unitInfoFor("app.container"))
	resolver.RegisterPodMember("mypod.pod", "app.service")

	out, _, err := PodTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "Wants"), "app.service")
	assert.Contains(t, out.LookupAll(UnitSection, "Before"), "app.service")
}

func TestPodTranslatePublishPortIsRawPassthrough(t *testing.T) {
	src := newSourceUnit("mypod.pod")
	src.Append(PodSection, "PublishPort", "8080:80")
	resolver := newFakeResolver(unitInfoFor("mypod.pod"))
	out, _, err := PodTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStartPre"), "--publish 8080:80")
}

func TestPodTranslateVolumeResolution(t *testing.T) {
	src := newSourceUnit("mypod.pod")
	src.Append(PodSection, "Volume", "data.volume:/data")
	resolver := newFakeResolver(unitInfoFor("mypod.pod"), unitInfoFor("data.volume"))
	out, _, err := PodTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "Requires"), "data-volume.service")
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStartPre"), "systemd-data:/data")
}
