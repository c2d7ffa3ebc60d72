package trust

import (
	"context"
	"fmt"

	"github.com/dockstrap/dockstrap/internal/pkgmgr"
	"github.com/dockstrap/dockstrap/internal/platform"
	"github.com/dockstrap/dockstrap/internal/run"
)

// repoDistros maps detected distributions onto the directory Docker
// publishes packages under. Derivatives without a directory of their
// own use their upstream's.
var repoDistros = map[string]string{
	"ubuntu":    "ubuntu",
	"debian":    "debian",
	"raspbian":  "raspbian",
	"pop":       "ubuntu",
	"linuxmint": "ubuntu",
	"fedora":    "fedora",
	"rhel":      "rhel",
	"centos":    "centos",
	"rocky":     "centos",
	"almalinux": "centos",
	"alma":      "centos",
	"oracle":    "centos",
	"ol":        "centos",
}

// Installer fetches, authenticates, and places repository signing
// material, then registers the repository bound to it.
type Installer struct {
	fetcher *Fetcher
	runner  run.Runner
	info    *platform.Info
	cfg     Config
}

// NewInstaller validates its inputs and applies Config defaults.
func NewInstaller(runner run.Runner, info *platform.Info, cfg Config) (*Installer, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if info == nil {
		return nil, fmt.Errorf("platform info is required")
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = DefaultFingerprint
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}

	return &Installer{
		fetcher: NewFetcher(),
		runner:  runner,
		info:    info,
		cfg:     cfg,
	}, nil
}

// InstallKey fetches the signing key, authenticates it against the
// pinned fingerprint, and writes it in the form and location the
// platform family's package manager expects. Nothing touches the host
// until authentication has passed.
func (i *Installer) InstallKey(ctx context.Context) (*Material, error) {
	url := i.cfg.KeyURL
	if url == "" {
		url = keyURL(i.info)
	}

	data, err := i.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	keyring, err := ParseKeyring(data)
	if err != nil {
		return nil, &TrustFetchError{URL: url, Cause: err}
	}
	fingerprint, err := VerifyFingerprint(keyring, i.cfg.Fingerprint)
	if err != nil {
		return nil, &TrustFetchError{URL: url, Cause: err}
	}

	material := &Material{
		KeyURL:      url,
		Fingerprint: fingerprint,
		RepoURL:     repoBaseURL(i.info),
		Channel:     i.cfg.Channel,
	}

	switch i.info.Family {
	case platform.FamilyDebian:
		// apt's signed-by option wants the binary packet form.
		payload, err := Dearmor(data)
		if err != nil {
			return nil, &TrustFetchError{URL: url, Cause: err}
		}
		material.KeyPath = aptKeyPath
		if err := run.WriteFile(ctx, i.runner, material.KeyPath, payload); err != nil {
			return nil, fmt.Errorf("install signing key: %w", err)
		}
	case platform.FamilyRHEL:
		// rpm imports armored keys as fetched.
		material.KeyPath = rpmKeyPath
		if err := run.WriteFile(ctx, i.runner, material.KeyPath, data); err != nil {
			return nil, fmt.Errorf("install signing key: %w", err)
		}
	default:
		return nil, fmt.Errorf("no signing key convention for platform family %q", i.info.Family)
	}

	return material, nil
}

// RegisterRepository writes the repository descriptor referencing
// previously installed trust material.
func (i *Installer) RegisterRepository(ctx context.Context, mgr pkgmgr.Manager, material *Material) error {
	if material == nil || material.KeyPath == "" {
		return fmt.Errorf("trust material must be installed before the repository is registered")
	}

	arch := i.info.Arch
	if arch == platform.ArchUnknown {
		arch = ""
	}

	repo := pkgmgr.RepoSpec{
		Name:     RepoName,
		BaseURL:  material.RepoURL,
		Codename: i.info.Codename,
		Channel:  material.Channel,
		Arch:     arch,
		KeyPath:  material.KeyPath,
	}
	if err := mgr.AddSignedRepository(ctx, repo); err != nil {
		return fmt.Errorf("register repository: %w", err)
	}
	return nil
}

func repoDistro(info *platform.Info) string {
	if mapped, ok := repoDistros[info.DistroID]; ok {
		return mapped
	}
	if info.DistroID != "" {
		return info.DistroID
	}
	if info.Family == platform.FamilyRHEL {
		return "centos"
	}
	return "debian"
}

func keyURL(info *platform.Info) string {
	return downloadBase + "/" + repoDistro(info) + "/gpg"
}

func repoBaseURL(info *platform.Info) string {
	return downloadBase + "/" + repoDistro(info)
}
