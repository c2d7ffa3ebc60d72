package pkgmgr

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dockstrap/dockstrap/internal/run"
)

// yumRepoDir is where dnf and yum read repository descriptors from.
const yumRepoDir = "/etc/yum.repos.d"

// dnfManager drives dnf (or yum on older hosts) on rhel-family hosts.
type dnfManager struct {
	runner run.Runner
	tool   string
}

// NewDnfManager creates the adapter for rhel-family hosts. Hosts that
// still ship only yum are driven through yum; the invocations used
// here are compatible across both.
func NewDnfManager(runner run.Runner) Manager {
	tool := "dnf"
	if _, err := exec.LookPath("dnf"); err != nil {
		if _, err := exec.LookPath("yum"); err == nil {
			tool = "yum"
		}
	}
	return &dnfManager{runner: runner, tool: tool}
}

func (d *dnfManager) Name() string {
	return d.tool
}

func (d *dnfManager) RefreshIndex(ctx context.Context) error {
	res, err := d.runner.Run(ctx, run.Command{
		Name: d.tool,
		Args: []string{"makecache"},
		Sudo: true,
	})
	if err != nil {
		return fmt.Errorf("refresh %s index: %w", d.tool, err)
	}
	if !res.Success() {
		return fmt.Errorf("refresh %s index: %s", d.tool, res.Detail())
	}
	return nil
}

func (d *dnfManager) InstallPackages(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	args := append([]string{"install", "-y"}, names...)
	res, err := d.runner.Run(ctx, run.Command{
		Name: d.tool,
		Args: args,
		Sudo: true,
	})
	if err != nil {
		return &PackageInstallError{Packages: names, ExitDetail: err.Error()}
	}
	if !res.Success() {
		return &PackageInstallError{Packages: names, ExitDetail: res.Detail()}
	}
	return nil
}

func (d *dnfManager) RemovePackagesIfPresent(ctx context.Context, names []string) error {
	present := make([]string, 0, len(names))
	for _, name := range names {
		installed, err := d.installed(ctx, name)
		if err != nil {
			return err
		}
		if installed {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return nil
	}

	args := append([]string{"remove", "-y"}, present...)
	res, err := d.runner.Run(ctx, run.Command{
		Name: d.tool,
		Args: args,
		Sudo: true,
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", strings.Join(present, ", "), err)
	}
	if !res.Success() {
		return fmt.Errorf("remove %s: %s", strings.Join(present, ", "), res.Detail())
	}
	return nil
}

// installed probes the rpm database for one package. rpm -q exits
// non-zero for unknown packages, which is not an error here.
func (d *dnfManager) installed(ctx context.Context, name string) (bool, error) {
	res, err := d.runner.Run(ctx, run.Command{
		Name: "rpm",
		Args: []string{"-q", name},
	})
	if err != nil {
		return false, fmt.Errorf("probe package %s: %w", name, err)
	}
	return res.Success(), nil
}

func (d *dnfManager) AddSignedRepository(ctx context.Context, repo RepoSpec) error {
	path := filepath.Join(yumRepoDir, repo.Name+".repo")
	if err := run.WriteFile(ctx, d.runner, path, []byte(dnfRepoFile(repo))); err != nil {
		return fmt.Errorf("register %s repository: %w", d.tool, err)
	}
	return nil
}

// dnfRepoFile renders a .repo descriptor with mandatory signature
// checking pinned to the installed trust material. The $releasever and
// $basearch macros are expanded by the package manager, so one
// descriptor serves every release and architecture.
func dnfRepoFile(repo RepoSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s-%s]\n", repo.Name, repo.Channel)
	fmt.Fprintf(&b, "name=%s %s packages\n", repo.Name, repo.Channel)
	fmt.Fprintf(&b, "baseurl=%s/$releasever/$basearch/%s\n", repo.BaseURL, repo.Channel)
	b.WriteString("enabled=1\n")
	b.WriteString("gpgcheck=1\n")
	fmt.Fprintf(&b, "gpgkey=file://%s\n", repo.KeyPath)
	return b.String()
}
