package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/profile"
	"github.com/dockstrap/dockstrap/internal/provision"
	"github.com/dockstrap/dockstrap/internal/trust"
)

// provisionTimeout bounds a full run, including package downloads.
const provisionTimeout = 10 * time.Minute

type provisionOptions struct {
	profilePath string
	channel     string
	dryRun      bool
	dockerGroup bool
	noShell     bool
}

func newProvisionCmd(root *rootFlags) *cobra.Command {
	opts := &provisionOptions{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install and verify Docker Engine on this host",
		Long: `Provision installs Docker Engine from the official package
repository for the detected distribution: it removes conflicting
distro packages, installs the pinned signing key, registers the
repository, installs the engine packages, and proves the result by
running a real workload.

Settings resolve in precedence order: command-line flags, then the
host profile (--profile), then DOCKSTRAP_* environment variables,
then the built-in defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd, root, opts)
		},
	}

	addProvisionFlags(cmd, opts)
	return cmd
}

func addProvisionFlags(cmd *cobra.Command, opts *provisionOptions) {
	cmd.Flags().StringVarP(&opts.profilePath, "profile", "p", "", "Path to a Lua host profile")
	cmd.Flags().StringVar(&opts.channel, "channel", trust.DefaultChannel, "Release channel (stable or test)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the commands a run would execute without touching the host")
	cmd.Flags().BoolVar(&opts.dockerGroup, "docker-group", false, "Add the invoking user to the docker group")
	cmd.Flags().BoolVar(&opts.noShell, "no-shell", false, "Skip shell alias setup")
}

func runProvision(cmd *cobra.Command, root *rootFlags, opts *provisionOptions) error {
	log, err := newLogger(root)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), provisionTimeout)
	defer cancel()

	cfg, err := resolveConfig(ctx, cmd, opts, profile.NewParser(platform.NewDetector()), root.verbose)
	if err != nil {
		return err
	}

	outcome, err := provision.NewService(cfg, log).Provision(ctx)
	if err != nil {
		return err
	}

	if !cfg.DryRun {
		printSuccessMessage(cfg, outcome)
	}
	return nil
}

// resolveConfig merges the three settings sources under the flags:
// flag beats profile beats environment beats default.
func resolveConfig(ctx context.Context, cmd *cobra.Command, opts *provisionOptions, parser *profile.Parser, verbose bool) (provision.Config, error) {
	cfg := provision.Config{
		Channel:      viper.GetString("channel"),
		KeyURL:       viper.GetString("key_url"),
		Fingerprint:  viper.GetString("fingerprint"),
		ShellAliases: true,
		DryRun:       opts.dryRun,
		DockerGroup:  opts.dockerGroup,
	}

	if opts.profilePath != "" {
		prof, err := parser.ParseFile(ctx, opts.profilePath)
		if err != nil {
			return provision.Config{}, fmt.Errorf("profile %s: %s", opts.profilePath, profile.FormatError(err, verbose))
		}
		if prof.Channel != "" {
			cfg.Channel = prof.Channel
		}
		cfg.ExtraPackages = prof.ExtraPackages
		cfg.ShellAliases = prof.ShellAliases
		if prof.DockerGroup {
			cfg.DockerGroup = true
		}
	}

	if cmd.Flags().Changed("channel") {
		cfg.Channel = opts.channel
	}
	if opts.noShell {
		cfg.ShellAliases = false
	}

	// The profile validates its own channel value; this catches flag
	// and environment values.
	switch cfg.Channel {
	case "stable", "test":
	default:
		return provision.Config{}, fmt.Errorf("invalid channel %q (valid channels: stable, test)", cfg.Channel)
	}

	return cfg, nil
}

// printSuccessMessage prints the closing banner after a verified run.
func printSuccessMessage(cfg provision.Config, outcome *provision.Outcome) {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║  Docker Engine Provisioning Complete!                      ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Next steps:")

	steps := []string{"Try it out: sudo docker run --rm hello-world"}
	if outcome.Shell != nil && outcome.Shell.Changed {
		steps = append(steps, fmt.Sprintf("Load the new aliases: source %s", outcome.Shell.RCFile))
	}
	if cfg.DockerGroup {
		steps = append(steps, "Log out and back in so the docker group membership takes effect")
	}
	for i, step := range steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	fmt.Println()
}
