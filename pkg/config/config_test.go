package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsToSystemSearchDirsInPrecedenceOrder(t *testing.T) {
	cfg := Load(false, false, false, "", nil)
	assert.Equal(t, []string{DefaultAdminDir, DefaultTempDir, DefaultDistroDir}, cfg.UnitDirs)
	assert.Equal(t, DefaultEngineBin, cfg.EngineBin)
}

func TestLoadUserModeUsesXDGDirs(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("XDG_CONFIG_HOME", "/home/tester/.config")
	cfg := Load(true, false, false, "", nil)
	assert.Equal(t, []string{
		"/run/user/1000/containers/systemd",
		"/home/tester/.config/containers/systemd",
	}, cfg.UnitDirs)
}

func TestLoadCLIFlagOverridesEnvAndDefault(t *testing.T) {
	t.Setenv("QUADLET_ENGINE", "/usr/bin/docker")
	cfg := Load(false, false, false, "/opt/bin/podman", nil)
	assert.Equal(t, "/opt/bin/podman", cfg.EngineBin)
}

func TestLoadEnvOverridesDefaultEngine(t *testing.T) {
	t.Setenv("QUADLET_ENGINE", "/usr/bin/docker")
	cfg := Load(false, false, false, "", nil)
	assert.Equal(t, "/usr/bin/docker", cfg.EngineBin)
}

func TestLoadEnvUnitDirsOverridesDefault(t *testing.T) {
	t.Setenv("QUADLET_UNIT_DIRS", "/a/dirs:/b/dirs")
	cfg := Load(false, false, false, "", nil)
	assert.Equal(t, []string{"/a/dirs", "/b/dirs"}, cfg.UnitDirs)
}

func TestLoadExplicitUnitDirsOverridesEverything(t *testing.T) {
	t.Setenv("QUADLET_UNIT_DIRS", "/a/dirs")
	cfg := Load(false, false, false, "", []string{"/explicit"})
	assert.Equal(t, []string{"/explicit"}, cfg.UnitDirs)
}
