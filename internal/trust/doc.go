// Package trust installs the cryptographic material a third-party
// package repository is verified against, and registers the repository
// bound to that material.
//
// # Security Model
//
// Repository trust is the critical security step of provisioning: once
// a signing key is accepted by the host, every package the repository
// serves will install without complaint. The package therefore:
//   - Fetches key material over HTTPS only
//   - Authenticates the fetched keyring against a pinned fingerprint
//   - Writes nothing to the host until authentication has passed
//
// A fetch or authentication failure aborts the run with no partial
// trust state on the host: no key file and no repository descriptor.
//
// # Key Placement
//
// The installed form follows each platform family's convention:
//   - debian: binary (dearmored) keyring at /etc/apt/keyrings/docker.gpg,
//     referenced by the source entry's signed-by option
//   - rhel: armored key at /etc/pki/rpm-gpg/RPM-GPG-KEY-docker,
//     referenced by the repo file's gpgkey field
//
// # Usage
//
//	inst, err := trust.NewInstaller(runner, info, trust.Config{})
//	if err != nil {
//	    return err
//	}
//	material, err := inst.InstallKey(ctx)
//	if err != nil {
//	    return err
//	}
//	if err := inst.RegisterRepository(ctx, mgr, material); err != nil {
//	    return err
//	}
//
// # Architecture
//
// The package is organized into three components:
//   - Fetcher: single-attempt HTTPS retrieval of key material
//   - Keyring helpers: armored/binary parsing, dearmoring, pinning
//   - Installer: authentication, placement, repository registration
package trust
