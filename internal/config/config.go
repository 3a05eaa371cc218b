// Package config provides configuration types for the governance, audit
// and trust core.
//
// Configuration is YAML-first with environment variable overrides, in
// the same style as the teacher's minimalist single-file config: no
// database-backed config store, no admin web interface for editing
// YAML (the JSON admin API can inspect and override select runtime
// state, but the policy/governance/alert registries below are loaded
// once at boot).
package config

import (
	"os"

	"github.com/spf13/viper"
)

// CoreConfig is the top-level configuration for the governance/audit/
// trust core.
type CoreConfig struct {
	// Server configures the HTTP server listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Ledger configures the file-based hash-chained audit ledger.
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Attestation configures segment signing.
	Attestation AttestationConfig `yaml:"attestation" mapstructure:"attestation"`

	// Governance configures the reaction engine's trigger thresholds.
	Governance GovernanceConfig `yaml:"governance" mapstructure:"governance"`

	// Policy defines the capability and space access-control registries.
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// Alert configures the alert dispatcher's dedup window, escalation
	// toggles, and notification sinks.
	Alert AlertConfig `yaml:"alert" mapstructure:"alert"`

	// Guard configures the session guard's single- vs multi-tenant mode.
	Guard GuardConfig `yaml:"guard" mapstructure:"guard"`

	// VFS configures the governance write gate and duplicate scanner.
	VFS VFSConfig `yaml:"vfs" mapstructure:"vfs"`

	// RateLimit configures optional admin API rate limiting.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// StateFile is the path to the runtime state file (per-environment
	// alert dedup state). Defaults to "./state.json".
	StateFile string `yaml:"state_file" mapstructure:"state_file"`

	// DevMode enables development features (verbose logging, permissive
	// single-tenant defaults).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8080").
	// Defaults to "127.0.0.1:8080" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// LedgerConfig configures the file-based ledger store.
type LedgerConfig struct {
	// Dir is the directory where chain log files are stored.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// MaxFileSizeMB is the per-chain-file rotation size. Defaults to 100.
	MaxFileSizeMB int `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
}

// AttestationConfig configures segment signing.
type AttestationConfig struct {
	// ToolVersion is recorded in every manifest for offline verification
	// context (e.g. a release tag of the signing tool).
	ToolVersion string `yaml:"tool_version" mapstructure:"tool_version"`
}

// GovernanceConfig configures the reaction engine's trigger thresholds.
// Zero-value fields fall back to governance.DefaultConfig() at boot.
type GovernanceConfig struct {
	PolicyBurstThreshold int   `yaml:"policy_burst_threshold" mapstructure:"policy_burst_threshold" validate:"omitempty,min=1"`
	PolicyBurstWindowMs  int64 `yaml:"policy_burst_window_ms" mapstructure:"policy_burst_window_ms" validate:"omitempty,min=1"`
	NonceReplayThreshold int   `yaml:"nonce_replay_threshold" mapstructure:"nonce_replay_threshold" validate:"omitempty,min=1"`
	NonceReplayWindowMs  int64 `yaml:"nonce_replay_window_ms" mapstructure:"nonce_replay_window_ms" validate:"omitempty,min=1"`
	SoftLockDurationMs   int64 `yaml:"soft_lock_duration_ms" mapstructure:"soft_lock_duration_ms" validate:"omitempty,min=1"`
	// OwnerPassphraseHash is the Argon2id PHC-format hash checked
	// against an owner override request in platform-identity auth
	// mode. Generate it with "sentinel-gate hash-passphrase". Empty
	// disables override in that mode.
	OwnerPassphraseHash string `yaml:"owner_passphrase_hash" mapstructure:"owner_passphrase_hash"`
}

// PolicyConfig defines the capability and space access-control
// registries evaluated by the policy engine.
type PolicyConfig struct {
	// Capabilities are the registered capability policies.
	Capabilities []CapabilityPolicyConfig `yaml:"capabilities" mapstructure:"capabilities" validate:"omitempty,dive"`
	// Spaces are the registered space policies.
	Spaces []SpacePolicyConfig `yaml:"spaces" mapstructure:"spaces" validate:"omitempty,dive"`
}

// CapabilityPolicyConfig mirrors internal/domain/policy.CapabilityPolicy.
type CapabilityPolicyConfig struct {
	CapabilityID     string   `yaml:"capability_id" mapstructure:"capability_id" validate:"required"`
	RequiredPolicies []string `yaml:"required_policies" mapstructure:"required_policies"`
	RequiresStepUp   bool     `yaml:"requires_step_up" mapstructure:"requires_step_up"`
	Condition        string   `yaml:"condition" mapstructure:"condition"`
}

// SpacePolicyConfig mirrors internal/domain/policy.SpacePolicy.
type SpacePolicyConfig struct {
	SpaceID          string   `yaml:"space_id" mapstructure:"space_id" validate:"required"`
	RequiredRole     string   `yaml:"required_role" mapstructure:"required_role" validate:"omitempty,oneof=viewer user admin owner"`
	RequiredPolicies []string `yaml:"required_policies" mapstructure:"required_policies"`
	CanAccess        bool     `yaml:"can_access" mapstructure:"can_access"`
	CanOpenWindow    bool     `yaml:"can_open_window" mapstructure:"can_open_window"`
	CanFocusWindow   bool     `yaml:"can_focus_window" mapstructure:"can_focus_window"`
	CanMoveWindow    bool     `yaml:"can_move_window" mapstructure:"can_move_window"`
}

// AlertConfig configures the alert dispatcher.
type AlertConfig struct {
	// DedupTTLSeconds bounds how long an unchanged fingerprint is
	// suppressed. Defaults to 900.
	DedupTTLSeconds int `yaml:"dedup_ttl_seconds" mapstructure:"dedup_ttl_seconds" validate:"omitempty,min=1"`
	// Escalate30mEnabled/Escalate2hEnabled toggle the two escalation tiers.
	Escalate30mEnabled *bool `yaml:"escalate_30m_enabled" mapstructure:"escalate_30m_enabled"`
	Escalate2hEnabled  *bool `yaml:"escalate_2h_enabled" mapstructure:"escalate_2h_enabled"`
	// Sinks are the configured notification sinks.
	Sinks []AlertSinkConfig `yaml:"sinks" mapstructure:"sinks" validate:"omitempty,dive"`
}

// AlertSinkConfig configures one of the closed set of alert sinks.
type AlertSinkConfig struct {
	// Type is one of "message_webhook", "structured_webhook", "email_transport".
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=message_webhook structured_webhook email_transport"`
	// URL is the webhook endpoint.
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`
	// From/To are used only by the email_transport sink.
	From string `yaml:"from" mapstructure:"from"`
	To   string `yaml:"to" mapstructure:"to"`
}

// GuardConfig configures the session guard.
type GuardConfig struct {
	// MultiTenantEnabled switches the guard from single-tenant
	// (synthetic owner session) to multi-tenant header-based resolution.
	MultiTenantEnabled bool `yaml:"multi_tenant_enabled" mapstructure:"multi_tenant_enabled"`
}

// VFSConfig configures the governance write gate and duplicate scanner.
type VFSConfig struct {
	// FeatureEnabled gates write-family VFS operations. When false,
	// writes are denied unless LocalhostOverride is set.
	FeatureEnabled bool `yaml:"feature_enabled" mapstructure:"feature_enabled"`
	// LocalhostOverride bypasses FeatureEnabled for localhost-originated
	// requests (development convenience).
	LocalhostOverride bool `yaml:"localhost_override" mapstructure:"localhost_override"`
	// ScanMaxDepth bounds the duplicate scanner's recursion (0 = unlimited).
	ScanMaxDepth int `yaml:"scan_max_depth" mapstructure:"scan_max_depth" validate:"omitempty,min=0"`
	// ScanExcludeSystem excludes the system:// scheme from duplicate scans.
	// Defaults to true.
	ScanExcludeSystem *bool `yaml:"scan_exclude_system" mapstructure:"scan_exclude_system"`
	// RootDir is the real filesystem directory each VFS scheme maps
	// into, one subdirectory per scheme (system/, user/, workspace/).
	RootDir string `yaml:"root_dir" mapstructure:"root_dir"`
}

// RateLimitConfig configures rate limiting.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	IPRate   int `yaml:"ip_rate" mapstructure:"ip_rate" validate:"omitempty,min=1"`
	UserRate int `yaml:"user_rate" mapstructure:"user_rate" validate:"omitempty,min=1"`

	CleanupInterval string `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"omitempty"`
	MaxTTL          string `yaml:"max_ttl" mapstructure:"max_ttl" validate:"omitempty"`
}

// SetDevDefaults applies permissive defaults for development mode,
// applied BEFORE validation so required fields are satisfied.
func (c *CoreConfig) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if len(c.Policy.Spaces) == 0 {
		c.Policy.Spaces = []SpacePolicyConfig{
			{SpaceID: "public", CanAccess: true, CanOpenWindow: true, CanFocusWindow: true, CanMoveWindow: true},
		}
	}
	c.VFS.FeatureEnabled = true
}

// SetDefaults applies sensible default values to the configuration.
func (c *CoreConfig) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Ledger.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Ledger.Dir = home + "/.sentinelgate/ledger"
		}
	}
	if c.Ledger.MaxFileSizeMB == 0 {
		c.Ledger.MaxFileSizeMB = 100
	}

	if c.Attestation.ToolVersion == "" {
		c.Attestation.ToolVersion = "dev"
	}

	if c.Alert.DedupTTLSeconds == 0 {
		c.Alert.DedupTTLSeconds = 900
	}
	if c.Alert.Escalate30mEnabled == nil {
		c.Alert.Escalate30mEnabled = boolPtr(true)
	}
	if c.Alert.Escalate2hEnabled == nil {
		c.Alert.Escalate2hEnabled = boolPtr(true)
	}

	if c.VFS.ScanExcludeSystem == nil {
		c.VFS.ScanExcludeSystem = boolPtr(true)
	}
	if c.VFS.RootDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.VFS.RootDir = home + "/.sentinelgate/vfs"
		}
	}

	if c.StateFile == "" {
		c.StateFile = "./state.json"
	}

	// Rate limit defaults — enabled by default for security.
	// Only apply the default when the user hasn't explicitly set it in YAML/env.
	if !viper.IsSet("rate_limit.enabled") {
		c.RateLimit.Enabled = true
	}
	if c.RateLimit.IPRate == 0 {
		c.RateLimit.IPRate = 100
	}
	if c.RateLimit.UserRate == 0 {
		c.RateLimit.UserRate = 1000
	}
	if c.RateLimit.CleanupInterval == "" {
		c.RateLimit.CleanupInterval = "5m"
	}
	if c.RateLimit.MaxTTL == "" {
		c.RateLimit.MaxTTL = "1h"
	}
}

func boolPtr(b bool) *bool { return &b }
