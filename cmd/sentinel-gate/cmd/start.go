// Package cmd provides the CLI commands for the Core.
package cmd

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreos-governance/core/internal/adapter/inbound/admin"
	"github.com/coreos-governance/core/internal/adapter/inbound/http"
	alertadapter "github.com/coreos-governance/core/internal/adapter/outbound/alert"
	attestationadapter "github.com/coreos-governance/core/internal/adapter/outbound/attestation"
	"github.com/coreos-governance/core/internal/adapter/outbound/cel"
	ledgeradapter "github.com/coreos-governance/core/internal/adapter/outbound/ledger"
	"github.com/coreos-governance/core/internal/adapter/outbound/memory"
	vfsadapter "github.com/coreos-governance/core/internal/adapter/outbound/vfs"
	"github.com/coreos-governance/core/internal/config"
	"github.com/coreos-governance/core/internal/domain/attestation"
	"github.com/coreos-governance/core/internal/domain/governance"
	"github.com/coreos-governance/core/internal/domain/ledger"
	"github.com/coreos-governance/core/internal/domain/policy"
	"github.com/coreos-governance/core/internal/domain/vfs"
	"github.com/coreos-governance/core/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Core server",
	Long: `Start the Core's HTTP server: the audit ledger, attestation,
governance, policy, alert, guard, and VFS services behind the admin
API, with health and metrics endpoints.

Examples:
  # Start with config file settings
  sentinel-gate start

  # Start with a specific config file
  sentinel-gate --config /path/to/config.yaml start`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging, relaxed validation)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if devMode {
		cfg.DevMode = true
	}

	cfg.SetDevDefaults()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	statePath := stateFilePath
	if statePath == "" {
		statePath = os.Getenv("SENTINEL_GATE_STATE_PATH")
	}
	if statePath == "" {
		statePath = cfg.StateFile
	}

	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger.Debug("log level configured", "level", cfg.Server.LogLevel, "effective", logLevel.String())

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	pidPath := pidFilePath()
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write PID file", "path", pidPath, "error", err)
	} else {
		defer os.Remove(pidPath)
	}

	if err := run(ctx, cfg, statePath, logger); err != nil {
		return err
	}

	logger.Info("core stopped")
	return nil
}

// wallClockMillis is the shared clock used by every millisecond-epoch
// domain Clock type (guard, policy, governance, alert).
func wallClockMillis() int64 {
	return time.Now().UnixMilli()
}

// run wires every domain service to its outbound adapter, builds the
// admin API and HTTP transport around them, and blocks until ctx is
// cancelled.
func run(ctx context.Context, cfg *config.CoreConfig, statePath string, logger *slog.Logger) error {
	// Ledger: file-backed hash chain plus the async append queue.
	ledgerStore, err := ledgeradapter.NewFileStore(ledgeradapter.FileConfig{
		Dir:           cfg.Ledger.Dir,
		MaxFileSizeMB: cfg.Ledger.MaxFileSizeMB,
	}, logger)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer ledgerStore.Close()

	ledgerSvc := service.NewLedgerService(ledger.New(ledgerStore), logger)
	ledgerSvc.Start(ctx)
	defer ledgerSvc.Stop()

	// Attestation: Ed25519 key provider, env-seeded in production, a
	// fixed deterministic seed in dev mode so "--dev" never requires
	// operator setup.
	keyProvider, err := attestationKeyProvider(cfg)
	if err != nil {
		return fmt.Errorf("attestation key provider: %w", err)
	}
	attestationSvc := service.NewAttestationService(ledgerSvc, keyProvider, cfg.Attestation.ToolVersion)

	// Governance: reaction engine driven by the ledger's durability.
	govEngine := governance.NewEngine(governance.Config{
		PolicyBurstThreshold: cfg.Governance.PolicyBurstThreshold,
		PolicyBurstWindowMs:  cfg.Governance.PolicyBurstWindowMs,
		NonceReplayThreshold: cfg.Governance.NonceReplayThreshold,
		NonceReplayWindowMs:  cfg.Governance.NonceReplayWindowMs,
		SoftLockDurationMs:   cfg.Governance.SoftLockDurationMs,
	}, wallClockMillis)
	governanceSvc := service.NewGovernanceService(govEngine, ledgerSvc, cfg.Governance.OwnerPassphraseHash)

	// Policy: capability/space registries from config, falling back to
	// the baseline registry when nothing is configured, evaluated with
	// a CEL condition evaluator.
	capabilities := capabilityPoliciesFromConfig(cfg.Policy.Capabilities)
	spaces := spacePoliciesFromConfig(cfg.Policy.Spaces)
	conditionEval, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("build condition evaluator: %w", err)
	}
	policyEngine := policy.NewEngine(capabilities, spaces, conditionEval, wallClockMillis)
	policySvc := service.NewPolicyEvaluationService(policyEngine, nil)

	// Alert: dedup/escalation state persisted alongside the runtime
	// state file, sinks built from config.
	alertStore := alertadapter.NewFileStateStore(statePath, logger)
	alertSvc, err := service.NewAlertService(cfg.Alert, alertStore, wallClockMillis, logger)
	if err != nil {
		return fmt.Errorf("build alert service: %w", err)
	}

	// Guard: in-memory tenant membership/session store. In
	// single-tenant mode (the default) the guard resolves a synthetic
	// owner session without consulting either store.
	guardStore := memory.NewGuardStore()
	guardSvc := service.NewGuardService(guardStore, guardStore, cfg.Guard.MultiTenantEnabled, wallClockMillis, logger)

	// VFS: real filesystem-backed directory/scan listers rooted at
	// cfg.VFS.RootDir.
	vfsLister, err := vfsadapter.NewFSLister(cfg.VFS.RootDir)
	if err != nil {
		return fmt.Errorf("build vfs lister: %w", err)
	}
	scanOptions := vfs.DefaultScanOptions()
	if cfg.VFS.ScanMaxDepth > 0 {
		scanOptions.MaxDepth = cfg.VFS.ScanMaxDepth
	}
	if cfg.VFS.ScanExcludeSystem != nil {
		scanOptions.ExcludeSystem = *cfg.VFS.ScanExcludeSystem
	}
	vfsSvc := service.NewVFSService(ledgerSvc, vfsLister, vfsLister, cfg.VFS.FeatureEnabled, cfg.VFS.LocalhostOverride, scanOptions, wallClockMillis)

	adminOpts := []admin.AdminAPIOption{
		admin.WithLedgerService(ledgerSvc),
		admin.WithAttestationService(attestationSvc),
		admin.WithGovernanceService(governanceSvc),
		admin.WithPolicyEvaluationService(policySvc),
		admin.WithAlertService(alertSvc),
		admin.WithGuardService(guardSvc),
		admin.WithVFSService(vfsSvc),
		admin.WithMultiTenantEnabled(cfg.Guard.MultiTenantEnabled),
		admin.WithLogger(logger),
	}
	if cfg.RateLimit.Enabled {
		adminOpts = append(adminOpts, admin.WithRateLimit(cfg.RateLimit.IPRate, time.Minute))
	}
	adminHandler := admin.NewAdminAPIHandler(adminOpts...)

	healthChecker := http.NewHealthChecker(ledgerSvc, governanceSvc, Version)

	transport := http.NewTransport(adminHandler.Handler(),
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithLogger(logger),
		http.WithHealthChecker(healthChecker),
	)

	printBanner(Version, cfg.Server.HTTPAddr, cfg.DevMode, len(capabilities), len(spaces))

	return transport.Start(ctx)
}

// attestationKeyProvider returns an env-seeded Ed25519 key provider in
// production, or a fixed deterministic one in dev mode so local runs
// never require ATTESTATION_SIGNING_SEED to be set.
func attestationKeyProvider(cfg *config.CoreConfig) (attestation.KeyProvider, error) {
	if !cfg.DevMode {
		return attestationadapter.NewEnvKeyProvider()
	}
	if os.Getenv(attestationadapter.EnvSeedVar) != "" {
		return attestationadapter.NewEnvKeyProvider()
	}
	seed := sha256.Sum256([]byte("sentinel-gate-dev-mode-fixed-seed"))
	return attestation.NewDeterministicTestProvider(seed[:ed25519.SeedSize])
}

func capabilityPoliciesFromConfig(cfgs []config.CapabilityPolicyConfig) []policy.CapabilityPolicy {
	if len(cfgs) == 0 {
		return policy.DefaultCapabilities()
	}
	out := make([]policy.CapabilityPolicy, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, policy.CapabilityPolicy{
			CapabilityID:     c.CapabilityID,
			RequiredPolicies: c.RequiredPolicies,
			RequiresStepUp:   c.RequiresStepUp,
			Condition:        c.Condition,
		})
	}
	return out
}

func spacePoliciesFromConfig(cfgs []config.SpacePolicyConfig) []policy.SpacePolicy {
	if len(cfgs) == 0 {
		return policy.DefaultSpaces()
	}
	out := make([]policy.SpacePolicy, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, policy.SpacePolicy{
			SpaceID:          c.SpaceID,
			RequiredRole:     policy.Role(c.RequiredRole),
			RequiredPolicies: c.RequiredPolicies,
			Permissions: policy.SpacePermissions{
				CanAccess:      c.CanAccess,
				CanOpenWindow:  c.CanOpenWindow,
				CanFocusWindow: c.CanFocusWindow,
				CanMoveWindow:  c.CanMoveWindow,
			},
		})
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printBanner(version, httpAddr string, devMode bool, capabilityCount, spaceCount int) {
	mode := "production"
	if devMode {
		mode = "development"
	}
	fmt.Fprintf(os.Stderr, `
  Core %s (%s mode)
  listening on %s
  capabilities: %d   spaces: %d

`, version, mode, httpAddr, capabilityCount, spaceCount)
}
