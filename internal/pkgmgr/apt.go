package pkgmgr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dockstrap/dockstrap/internal/run"
)

// aptSourcesDir is where apt reads one-line source descriptors from.
const aptSourcesDir = "/etc/apt/sources.list.d"

// aptEnv suppresses all interactive prompting during transactions.
var aptEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// aptManager drives apt-get on debian-family hosts.
type aptManager struct {
	runner run.Runner
}

// NewAptManager creates the adapter for debian-family hosts.
func NewAptManager(runner run.Runner) Manager {
	return &aptManager{runner: runner}
}

func (a *aptManager) Name() string {
	return "apt"
}

func (a *aptManager) RefreshIndex(ctx context.Context) error {
	res, err := a.runner.Run(ctx, run.Command{
		Name: "apt-get",
		Args: []string{"update"},
		Env:  aptEnv,
		Sudo: true,
	})
	if err != nil {
		return fmt.Errorf("refresh apt index: %w", err)
	}
	if !res.Success() {
		return fmt.Errorf("refresh apt index: %s", res.Detail())
	}
	return nil
}

func (a *aptManager) InstallPackages(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	args := append([]string{"install", "-y"}, names...)
	res, err := a.runner.Run(ctx, run.Command{
		Name: "apt-get",
		Args: args,
		Env:  aptEnv,
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

func (a *aptManager) RemovePackagesIfPresent(ctx context.Context, names []string) error {
	present := make([]string, 0, len(names))
	for _, name := range names {
		installed, err := a.installed(ctx, name)
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
	res, err := a.runner.Run(ctx, run.Command{
		Name: "apt-get",
		Args: args,
		Env:  aptEnv,
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

// installed probes dpkg's database for one package. dpkg-query exits
// non-zero for unknown packages, which is not an error here.
func (a *aptManager) installed(ctx context.Context, name string) (bool, error) {
	res, err := a.runner.Run(ctx, run.Command{
		Name: "dpkg-query",
		Args: []string{"-W", "-f", "${Status}", name},
	})
	if err != nil {
		return false, fmt.Errorf("probe package %s: %w", name, err)
	}
	if !res.Success() {
		return false, nil
	}
	// Status reads "install ok installed" for present packages and
	// "deinstall ok config-files" when only configuration remains.
	return strings.HasSuffix(strings.TrimSpace(res.Stdout), " installed"), nil
}

func (a *aptManager) AddSignedRepository(ctx context.Context, repo RepoSpec) error {
	path := filepath.Join(aptSourcesDir, repo.Name+".list")
	line := aptSourceLine(repo)
	if err := run.WriteFile(ctx, a.runner, path, []byte(line+"\n")); err != nil {
		return fmt.Errorf("register apt repository: %w", err)
	}
	return nil
}

// aptSourceLine renders the one-line sources format. The signed-by
// option pins index verification to the installed trust material; a
// raw unsigned source is never emitted.
func aptSourceLine(repo RepoSpec) string {
	opts := make([]string, 0, 2)
	if repo.Arch != "" {
		opts = append(opts, "arch="+repo.Arch)
	}
	opts = append(opts, "signed-by="+repo.KeyPath)
	return fmt.Sprintf("deb [%s] %s %s %s", strings.Join(opts, " "), repo.BaseURL, repo.Codename, repo.Channel)
}
