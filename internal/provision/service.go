// Package provision drives a complete run end to end: detect the
// platform, gate it against the support matrix, execute the
// installation pipeline, verify the engine works, and hand off to
// shell setup.
//
// The service owns sequencing and reporting; the real work lives in
// the packages it composes. Progress is printed as it happens so an
// interrupted run shows how far it got, and every fatal error names
// the stage that produced it.
package provision

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dockstrap/dockstrap/internal/logging"
	"github.com/dockstrap/dockstrap/internal/pipeline"
	"github.com/dockstrap/dockstrap/internal/pkgmgr"
	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/run"
	"github.com/dockstrap/dockstrap/internal/shell"
	"github.com/dockstrap/dockstrap/internal/support"
	"github.com/dockstrap/dockstrap/internal/trust"
	"github.com/dockstrap/dockstrap/internal/verify"
)

// keyInstaller is the surface of the trust installer the pipeline
// drives: install the signing key, then register the repository
// bound to it.
type keyInstaller interface {
	InstallKey(ctx context.Context) (*trust.Material, error)
	RegisterRepository(ctx context.Context, mgr pkgmgr.Manager, material *trust.Material) error
}

// Service orchestrates one provisioning run.
type Service struct {
	cfg      Config
	detector platform.Detector
	matrix   *support.Matrix
	runner   run.Runner
	logger   *logging.Logger
	out      io.Writer

	// newInstaller builds the trust installer once the platform is
	// known. Indirect so runs without a reachable key endpoint can
	// substitute their own.
	newInstaller func(run.Runner, *platform.Info, trust.Config) (keyInstaller, error)
}

// NewService wires a Service against the real host. A dry-run Config
// swaps the host runner for a recording one.
func NewService(cfg Config, logger *logging.Logger) *Service {
	s := &Service{
		cfg:      cfg,
		detector: platform.NewDetector(),
		matrix:   support.Default(),
		logger:   logger,
		out:      os.Stdout,
		newInstaller: func(r run.Runner, info *platform.Info, tc trust.Config) (keyInstaller, error) {
			return trust.NewInstaller(r, info, tc)
		},
	}
	if cfg.DryRun {
		s.runner = &run.DryRunner{Out: s.out}
	} else {
		s.runner = run.NewRunner()
	}
	return s
}

// Provision runs the full sequence. The returned Outcome is always
// non-nil and reflects every stage that ran; the error is the typed
// failure of the stage that aborted the run, or nil.
func (s *Service) Provision(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}
	log := s.logger.WithStage("provision")

	fmt.Fprintf(s.out, "Detecting platform...\n")
	info, err := s.detector.Detect(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.Platform = info
	if distro := info.GetDistro(); distro != nil {
		fmt.Fprintf(s.out, "✓ Detected %s (%s family, %s)\n", distro.ID, distro.Family, info.Arch)
	} else {
		fmt.Fprintf(s.out, "✓ Detected %s, %s\n", info.OS, info.Arch)
	}
	log.WithFields(map[string]any{
		"distro":   info.DistroID,
		"codename": info.Codename,
		"arch":     info.Arch,
	}).Info("platform detected")

	// The gate is a hard precondition: nothing below runs, and no
	// network or package-manager call happens, until it passes.
	if err := s.matrix.Check(info); err != nil {
		return outcome, err
	}
	fmt.Fprintf(s.out, "✓ Platform supported\n")

	mgr, err := pkgmgr.ForFamily(info.Family, s.runner)
	if err != nil {
		return outcome, fmt.Errorf("select package manager: %w", err)
	}

	channel := s.cfg.Channel
	if channel == "" {
		channel = trust.DefaultChannel
	}
	installer, err := s.newInstaller(s.runner, info, trust.Config{
		KeyURL:      s.cfg.KeyURL,
		Fingerprint: s.cfg.Fingerprint,
		Channel:     channel,
	})
	if err != nil {
		return outcome, fmt.Errorf("prepare trust installer: %w", err)
	}

	fmt.Fprintf(s.out, "\nProvisioning Docker Engine (%s channel, via %s)...\n", channel, mgr.Name())
	report, err := pipeline.New(s.logger, s.steps(info, mgr, installer)...).Run(ctx)
	outcome.Report = report
	if err != nil {
		return outcome, err
	}

	if s.cfg.DryRun {
		if s.cfg.ShellAliases {
			s.setupShell(outcome)
		}
		fmt.Fprintf(s.out, "\nDry run complete; verification skipped.\n")
		log.Info("dry run complete")
		return outcome, nil
	}

	fmt.Fprintf(s.out, "\nVerifying installation...\n")
	vreport, err := verify.NewVerifier(s.runner, s.logger).Verify(ctx)
	outcome.Verify = vreport
	if err != nil {
		return outcome, err
	}
	fmt.Fprintf(s.out, "✓ Smoke test passed\n")
	fmt.Fprintf(s.out, "✓ Docker Engine %s is working\n", vreport.Version)

	if s.cfg.ShellAliases {
		s.setupShell(outcome)
	}

	return outcome, nil
}

// setupShell applies the managed alias block. Failures are reported
// and recorded but never fail the run; the engine is already working
// at this point and the user can add aliases by hand.
func (s *Service) setupShell(outcome *Outcome) {
	fmt.Fprintf(s.out, "\nSetting up shell aliases...\n")

	mgr, err := shell.NewManager(shell.Config{HomeDir: s.cfg.HomeDir})
	if err != nil {
		outcome.ShellErr = err
		s.reportShellFailure(err)
		return
	}

	result, err := mgr.DetectAndApply(shell.DefaultAliases(), shell.SetupOptions{
		Backup: true,
		DryRun: s.cfg.DryRun,
	})
	if err != nil {
		outcome.ShellErr = err
		s.reportShellFailure(err)
		return
	}
	outcome.Shell = result

	switch {
	case result.Changed && s.cfg.DryRun:
		fmt.Fprintf(s.out, "✓ Would write docker aliases to %s\n", result.RCFile)
	case result.Changed:
		fmt.Fprintf(s.out, "✓ Wrote docker aliases to %s\n", result.RCFile)
		if result.BackupPath != "" {
			fmt.Fprintf(s.out, "  Backup saved to: %s\n", result.BackupPath)
		}
	default:
		fmt.Fprintf(s.out, "✓ Docker aliases already present in %s\n", result.RCFile)
	}
}

func (s *Service) reportShellFailure(err error) {
	s.logger.WithStage("shell").Warn(fmt.Sprintf("alias setup failed: %v", err))
	fmt.Fprintf(s.out, "⚠  Shell alias setup failed: %v\n", err)
	fmt.Fprintf(s.out, "   You can add aliases to your rc file manually.\n")
}
