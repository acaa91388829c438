// SPDX-License-Identifier: LGPL-2.1-or-later

// Package config loads the daemon's configuration: a typed struct parsed
// from YAML, layered with environment overrides and built-in defaults.
// The core consumes the resulting Config as a plain struct; file parsing
// never happens inside the state manager.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/markhindley/elogind/internal/elogerr"
)

// HandleAction is what the daemon does in response to a power key, lid
// switch, or stable idle hint.
type HandleAction string

const (
	ActionIgnore      HandleAction = "ignore"
	ActionPoweroff    HandleAction = "poweroff"
	ActionReboot      HandleAction = "reboot"
	ActionHalt        HandleAction = "halt"
	ActionSuspend     HandleAction = "suspend"
	ActionHibernate   HandleAction = "hibernate"
	ActionHybridSleep HandleAction = "hybrid-sleep"
	ActionLock        HandleAction = "lock"
)

var validActions = map[HandleAction]struct{}{
	ActionIgnore: {}, ActionPoweroff: {}, ActionReboot: {}, ActionHalt: {},
	ActionSuspend: {}, ActionHibernate: {}, ActionHybridSleep: {}, ActionLock: {},
}

// IsValid reports whether a names a recognized action.
func (a HandleAction) IsValid() bool {
	_, ok := validActions[a]
	return ok
}

// Config is the daemon configuration. Field semantics follow the
// configuration table in the external-interfaces design.
type Config struct {
	LogLevel   string `yaml:"logLevel,omitempty"`
	RuntimeDir string `yaml:"runtimeDir,omitempty"`

	KillUserProcesses bool     `yaml:"killUserProcesses"`
	KillOnlyUsers     []string `yaml:"killOnlyUsers,omitempty"`
	KillExcludeUsers  []string `yaml:"killExcludeUsers,omitempty"`

	InhibitDelayMaxSec int `yaml:"inhibitDelayMaxSec,omitempty"`

	HandlePowerKey        HandleAction `yaml:"handlePowerKey,omitempty"`
	HandleSuspendKey      HandleAction `yaml:"handleSuspendKey,omitempty"`
	HandleHibernateKey    HandleAction `yaml:"handleHibernateKey,omitempty"`
	HandleLidSwitch       HandleAction `yaml:"handleLidSwitch,omitempty"`
	HandleLidSwitchDocked HandleAction `yaml:"handleLidSwitchDocked,omitempty"`

	IdleAction    HandleAction `yaml:"idleAction,omitempty"`
	IdleActionSec int          `yaml:"idleActionSec,omitempty"`

	HoldoffTimeoutSec int `yaml:"holdoffTimeoutSec,omitempty"`

	SuspendState    string `yaml:"suspendState,omitempty"`
	SuspendMode     string `yaml:"suspendMode,omitempty"`
	HibernateState  string `yaml:"hibernateState,omitempty"`
	HibernateMode   string `yaml:"hibernateMode,omitempty"`
	HybridSleepState string `yaml:"hybridSleepState,omitempty"`
	HybridSleepMode  string `yaml:"hybridSleepMode,omitempty"`
}

// InhibitDelayMax returns the maximum delay-inhibitor wait as a Duration.
func (c *Config) InhibitDelayMax() time.Duration {
	return time.Duration(c.InhibitDelayMaxSec) * time.Second
}

// HoldoffTimeout returns the post-action grace period as a Duration.
func (c *Config) HoldoffTimeout() time.Duration {
	return time.Duration(c.HoldoffTimeoutSec) * time.Second
}

// IdleActionDelay returns the idle-hint stability duration as a Duration.
func (c *Config) IdleActionDelay() time.Duration {
	return time.Duration(c.IdleActionSec) * time.Second
}

// Defaults returns the built-in configuration, matching the daemon's
// compiled-in behavior when no file is present.
func Defaults() Config {
	return Config{
		LogLevel:   "info",
		RuntimeDir: "/run/elogind",

		KillUserProcesses: false,

		InhibitDelayMaxSec: 5,

		HandlePowerKey:        ActionPoweroff,
		HandleSuspendKey:      ActionSuspend,
		HandleHibernateKey:    ActionHibernate,
		HandleLidSwitch:       ActionSuspend,
		HandleLidSwitchDocked: ActionIgnore,

		IdleAction:    ActionIgnore,
		IdleActionSec: 30 * 60,

		HoldoffTimeoutSec: 30,

		SuspendState:    "mem",
		HibernateState:  "disk",
		HibernateMode:   "platform",
		HybridSleepState: "disk",
		HybridSleepMode:  "suspend",
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (optional — a missing file is not an error), overlaid by
// ELOGIND_* environment variables. Validation runs on the merged result.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// compiled-in defaults apply
		case err != nil:
			return Config{}, elogerr.Wrap(elogerr.KindIOError, "reading config file", err)
		default:
			var file Config
			dec := yaml.NewDecoder(strings.NewReader(string(raw)))
			dec.KnownFields(false)
			if err := dec.Decode(&file); err != nil {
				return Config{}, elogerr.Wrap(elogerr.KindInvalidArgument, "parsing config file", err)
			}
			mergeFile(&cfg, &file)
		}
	}

	mergeEnv(&cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unrecognized action names and nonsensical numeric
// settings on the merged configuration.
func (c *Config) Validate() error {
	for name, a := range map[string]HandleAction{
		"handlePowerKey":        c.HandlePowerKey,
		"handleSuspendKey":      c.HandleSuspendKey,
		"handleHibernateKey":    c.HandleHibernateKey,
		"handleLidSwitch":       c.HandleLidSwitch,
		"handleLidSwitchDocked": c.HandleLidSwitchDocked,
		"idleAction":            c.IdleAction,
	} {
		if a != "" && !a.IsValid() {
			return elogerr.New(elogerr.KindInvalidArgument,
				fmt.Sprintf("%s: unknown action %q", name, a))
		}
	}
	if c.InhibitDelayMaxSec < 0 {
		return elogerr.New(elogerr.KindInvalidArgument, "inhibitDelayMaxSec must be >= 0")
	}
	if c.IdleActionSec < 0 {
		return elogerr.New(elogerr.KindInvalidArgument, "idleActionSec must be >= 0")
	}
	if c.HoldoffTimeoutSec < 0 {
		return elogerr.New(elogerr.KindInvalidArgument, "holdoffTimeoutSec must be >= 0")
	}
	return nil
}

// mergeFile overlays non-zero file values onto cfg. Booleans from the file
// always win (YAML has no "absent bool" without pointers, and the only
// bool here defaults to false anyway).
func mergeFile(cfg, file *Config) {
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.RuntimeDir != "" {
		cfg.RuntimeDir = file.RuntimeDir
	}
	cfg.KillUserProcesses = file.KillUserProcesses
	if file.KillOnlyUsers != nil {
		cfg.KillOnlyUsers = file.KillOnlyUsers
	}
	if file.KillExcludeUsers != nil {
		cfg.KillExcludeUsers = file.KillExcludeUsers
	}
	if file.InhibitDelayMaxSec != 0 {
		cfg.InhibitDelayMaxSec = file.InhibitDelayMaxSec
	}
	for _, m := range []struct {
		dst *HandleAction
		src HandleAction
	}{
		{&cfg.HandlePowerKey, file.HandlePowerKey},
		{&cfg.HandleSuspendKey, file.HandleSuspendKey},
		{&cfg.HandleHibernateKey, file.HandleHibernateKey},
		{&cfg.HandleLidSwitch, file.HandleLidSwitch},
		{&cfg.HandleLidSwitchDocked, file.HandleLidSwitchDocked},
		{&cfg.IdleAction, file.IdleAction},
	} {
		if m.src != "" {
			*m.dst = m.src
		}
	}
	if file.IdleActionSec != 0 {
		cfg.IdleActionSec = file.IdleActionSec
	}
	if file.HoldoffTimeoutSec != 0 {
		cfg.HoldoffTimeoutSec = file.HoldoffTimeoutSec
	}
	for _, m := range []struct {
		dst *string
		src string
	}{
		{&cfg.SuspendState, file.SuspendState},
		{&cfg.SuspendMode, file.SuspendMode},
		{&cfg.HibernateState, file.HibernateState},
		{&cfg.HibernateMode, file.HibernateMode},
		{&cfg.HybridSleepState, file.HybridSleepState},
		{&cfg.HybridSleepMode, file.HybridSleepMode},
	} {
		if m.src != "" {
			*m.dst = m.src
		}
	}
}

// mergeEnv overlays ELOGIND_* environment variables. getenv is injected
// for tests.
func mergeEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("ELOGIND_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("ELOGIND_RUNTIME_DIR"); v != "" {
		cfg.RuntimeDir = v
	}
	if v := getenv("ELOGIND_KILL_USER_PROCESSES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.KillUserProcesses = b
		}
	}
	if v := getenv("ELOGIND_KILL_ONLY_USERS"); v != "" {
		cfg.KillOnlyUsers = splitList(v)
	}
	if v := getenv("ELOGIND_KILL_EXCLUDE_USERS"); v != "" {
		cfg.KillExcludeUsers = splitList(v)
	}
	if v := getenv("ELOGIND_INHIBIT_DELAY_MAX_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.InhibitDelayMaxSec = n
		}
	}
	if v := getenv("ELOGIND_HANDLE_LID_SWITCH"); v != "" {
		cfg.HandleLidSwitch = HandleAction(v)
	}
	if v := getenv("ELOGIND_HANDLE_LID_SWITCH_DOCKED"); v != "" {
		cfg.HandleLidSwitchDocked = HandleAction(v)
	}
	if v := getenv("ELOGIND_IDLE_ACTION"); v != "" {
		cfg.IdleAction = HandleAction(v)
	}
	if v := getenv("ELOGIND_IDLE_ACTION_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IdleActionSec = n
		}
	}
	if v := getenv("ELOGIND_HOLDOFF_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HoldoffTimeoutSec = n
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
