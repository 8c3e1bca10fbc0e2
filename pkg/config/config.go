// Package config resolves quadlet-gen's run configuration: which
// directories to search for source units, which engine binary to target,
// user-mode vs. system-mode defaults, and log verbosity. It follows the
// same viper-backed Settings/Provider shape quad-ops's own internal/config
// package uses, adapted to this generator's own settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default search directories for system-mode runs, in decreasing
// precedence, matching constants.rs's UNIT_DIR_ADMIN/UNIT_DIR_TEMP/
// UNIT_DIR_DISTRO order.
const (
	DefaultAdminDir  = "/etc/containers/systemd"
	DefaultTempDir   = "/run/containers/systemd"
	DefaultDistroDir = "/usr/share/containers/systemd"
)

// DefaultEngineBin is the container engine binary assumed when
// QUADLET_ENGINE is unset, matching the original's DEFAULT_PODMAN_BINARY.
const DefaultEngineBin = "/usr/bin/podman"

// Settings is the fully resolved configuration for one generator run.
type Settings struct {
	UnitDirs  []string
	UserMode  bool
	Verbose   bool
	DryRun    bool
	EngineBin string
}

// userDirs returns the rootless search directories, in decreasing
// precedence, rooted at $XDG_RUNTIME_DIR and $XDG_CONFIG_HOME the way the
// original's build_from_env does for a --user invocation.
func userDirs() []string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join("/run/user", os.Getenv("UID"))
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return []string{
		filepath.Join(runtimeDir, "containers/systemd"),
		filepath.Join(configDir, "containers/systemd"),
	}
}

// Load resolves Settings from CLI flags, environment variables, and
// defaults, in that precedence order. userMode/verbose/dryRun/engineBin/
// unitDirs are the values cobra parsed off the command line; a zero value
// (false, "", nil) means "not passed on the CLI", so Load falls through to
// the environment and then the default.
func Load(userMode, verbose, dryRun bool, engineBin string, unitDirs []string) *Settings {
	v := viper.New()
	v.SetEnvPrefix("QUADLET")
	v.AutomaticEnv()
	v.SetDefault("engine", DefaultEngineBin)
	_ = v.BindEnv("engine", "QUADLET_ENGINE")
	_ = v.BindEnv("unit_dirs", "QUADLET_UNIT_DIRS")

	cfg := &Settings{
		UserMode: userMode,
		Verbose:  verbose,
		DryRun:   dryRun,
	}

	cfg.EngineBin = engineBin
	if cfg.EngineBin == "" {
		cfg.EngineBin = v.GetString("engine")
	}

	cfg.UnitDirs = unitDirs
	if len(cfg.UnitDirs) == 0 {
		if raw := v.GetString("unit_dirs"); raw != "" {
			cfg.UnitDirs = filepath.SplitList(raw)
		}
	}
	if len(cfg.UnitDirs) == 0 {
		if userMode {
			cfg.UnitDirs = userDirs()
		} else {
			cfg.UnitDirs = []string{DefaultAdminDir, DefaultTempDir, DefaultDistroDir}
		}
	}

	return cfg
}
