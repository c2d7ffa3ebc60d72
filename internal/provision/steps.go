package provision

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/dockstrap/dockstrap/internal/pipeline"
	"github.com/dockstrap/dockstrap/internal/pkgmgr"
	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/run"
	"github.com/dockstrap/dockstrap/internal/trust"
)

// conflictingPackages lists what Docker's upstream documentation says
// to remove before installing from download.docker.com: distribution
// engine builds and anything sharing files with them.
var conflictingPackages = map[string][]string{
	platform.FamilyDebian: {
		"docker.io", "docker-doc", "docker-compose", "docker-compose-v2",
		"podman-docker", "containerd", "runc",
	},
	platform.FamilyRHEL: {
		"docker", "docker-client", "docker-client-latest", "docker-common",
		"docker-latest", "docker-latest-logrotate", "docker-logrotate",
		"docker-engine",
	},
}

// prerequisitePackages must be present before key and repository
// installation: TLS fetches need the system trust roots.
var prerequisitePackages = []string{"ca-certificates"}

// enginePackages is the full Docker Engine install set.
var enginePackages = []string{
	"docker-ce", "docker-ce-cli", "containerd.io",
	"docker-buildx-plugin", "docker-compose-plugin",
}

// steps builds the ordered pipeline for a gated platform. The trust
// material installed by the key step feeds repository registration
// through a shared closure variable; the ordering guarantee comes
// from the pipeline executing steps strictly in declared order.
func (s *Service) steps(info *platform.Info, mgr pkgmgr.Manager, installer keyInstaller) []pipeline.Step {
	var material *trust.Material

	steps := []pipeline.Step{
		{
			Name:     "remove conflicting packages",
			Critical: false,
			Run: func(ctx context.Context) error {
				if err := mgr.RemovePackagesIfPresent(ctx, conflictingPackages[info.Family]); err != nil {
					fmt.Fprintf(s.out, "⚠  Conflicting package removal failed: %v\n", err)
					return err
				}
				fmt.Fprintf(s.out, "✓ Conflicting packages removed\n")
				return nil
			},
		},
		{
			Name:     "install prerequisites",
			Critical: true,
			Run: func(ctx context.Context) error {
				if err := mgr.InstallPackages(ctx, prerequisitePackages); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "✓ Installed prerequisites\n")
				return nil
			},
		},
		{
			Name:     "install signing key",
			Critical: true,
			Run: func(ctx context.Context) error {
				m, err := installer.InstallKey(ctx)
				if err != nil {
					return err
				}
				material = m
				fmt.Fprintf(s.out, "✓ Installed signing key to %s\n", m.KeyPath)
				return nil
			},
		},
		{
			Name:     "register repository",
			Critical: true,
			Run: func(ctx context.Context) error {
				if err := installer.RegisterRepository(ctx, mgr, material); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "✓ Registered %s repository (%s channel)\n", trust.RepoName, material.Channel)
				if err := mgr.RefreshIndex(ctx); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "✓ Package index refreshed\n")
				return nil
			},
		},
		{
			Name:     "install docker packages",
			Critical: true,
			Run: func(ctx context.Context) error {
				packages := append([]string{}, enginePackages...)
				packages = append(packages, s.cfg.ExtraPackages...)
				if err := mgr.InstallPackages(ctx, packages); err != nil {
					return err
				}
				fmt.Fprintf(s.out, "✓ Installed Docker Engine packages\n")
				if len(s.cfg.ExtraPackages) > 0 {
					fmt.Fprintf(s.out, "✓ Installed extra packages: %s\n", strings.Join(s.cfg.ExtraPackages, ", "))
				}
				return nil
			},
		},
	}

	if s.cfg.DockerGroup {
		steps = append(steps, pipeline.Step{
			Name:     "configure docker group",
			Critical: false,
			Run: func(ctx context.Context) error {
				username, err := s.configureDockerGroup(ctx)
				if err != nil {
					fmt.Fprintf(s.out, "⚠  Docker group setup failed: %v\n", err)
					return err
				}
				fmt.Fprintf(s.out, "✓ Added %s to the docker group (takes effect at next login)\n", username)
				return nil
			},
		})
	}

	return steps
}

// configureDockerGroup ensures the docker group exists and adds the
// invoking user to it. Both commands are idempotent: groupadd -f
// succeeds when the group exists, usermod -aG when the membership
// does.
func (s *Service) configureDockerGroup(ctx context.Context) (string, error) {
	username, err := invokingUser()
	if err != nil {
		return "", err
	}

	res, err := s.runner.Run(ctx, run.Command{
		Name: "groupadd",
		Args: []string{"-f", "docker"},
		Sudo: true,
	})
	if err != nil {
		return "", fmt.Errorf("create docker group: %w", err)
	}
	if !res.Success() {
		return "", fmt.Errorf("create docker group: %s", res.Detail())
	}

	res, err = s.runner.Run(ctx, run.Command{
		Name: "usermod",
		Args: []string{"-aG", "docker", username},
		Sudo: true,
	})
	if err != nil {
		return "", fmt.Errorf("add %s to docker group: %w", username, err)
	}
	if !res.Success() {
		return "", fmt.Errorf("add %s to docker group: %s", username, res.Detail())
	}

	return username, nil
}

// invokingUser names who the docker group membership belongs to: the
// user behind sudo when the run is escalated, the current user
// otherwise. Membership for root itself would be pointless.
func invokingUser() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		return sudoUser, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	return u.Username, nil
}
