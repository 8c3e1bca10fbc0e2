package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeTranslateDefaultName(t *testing.T) {
	src := newSourceUnit("data.volume")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	out, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)

	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "volume create")
	assert.Contains(t, execStart, "--ignore")
	assert.Contains(t, execStart, "systemd-data")
	assert.Equal(t, "oneshot", mustLookup(t, out, ServiceSection, "Type"))
	assert.Equal(t, "yes", mustLookup(t, out, ServiceSection, "RemainAfterExit"))
	assert.Equal(t, "systemd-data", resourceNameOf(resolver, "data.volume"))
}

func TestVolumeTranslateExplicitVolumeName(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "VolumeName", "my-data")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	out, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "my-data")
}

func TestVolumeTranslateImageDriverRequiresImage(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "Driver", "image")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	_, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindValueError, te.Kind)
}

func TestVolumeTranslateImageDriverResolvesSiblingImage(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "Driver", "image")
	src.Set(VolumeSection, "Image", "base.image")
	resolver := newFakeResolver(unitInfoFor("data.volume"), unitInfoFor("base.image"))
	out, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	assert.Contains(t, out.LookupAll(UnitSection, "Requires"), "base-image.service")
	assert.Contains(t, mustLookup(t, out, ServiceSection, "ExecStart"), "--opt image=base")
}

func TestVolumeTranslateDeviceTypeAndOptions(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "Device", "/dev/sdb1")
	src.Set(VolumeSection, "Type", "bind")
	src.Set(VolumeSection, "Options", "noatime")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	out, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "--opt device=/dev/sdb1")
	assert.Contains(t, execStart, "--opt type=bind")
	assert.Contains(t, execStart, "--opt o=noatime")
	assert.Contains(t, out.LookupAll(UnitSection, "RequiresMountsFor"), "/dev/sdb1")
}

func TestVolumeTranslateTypeWithoutDeviceErrors(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "Type", "bind")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	_, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
}

func TestVolumeTranslateOptionsWithoutDeviceErrors(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "Options", "noatime")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	_, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.Error(t, err)
}

func TestVolumeTranslateUidGidCopyOptions(t *testing.T) {
	src := newSourceUnit("data.volume")
	src.Set(VolumeSection, "User", "1000")
	src.Set(VolumeSection, "Group", "1000")
	src.Set(VolumeSection, "Copy", "true")
	resolver := newFakeResolver(unitInfoFor("data.volume"))
	out, _, err := VolumeTranslator{}.Translate(newTestContext(resolver), src)
	require.NoError(t, err)
	execStart := mustLookup(t, out, ServiceSection, "ExecStart")
	assert.Contains(t, execStart, "--opt o=uid=1000,gid=1000")
	assert.Contains(t, execStart, "--opt copy")
}
