package trust

import "fmt"

// Docker's repository layout and release signing key. The fingerprint
// is the long-standing docker@docker.com key published in Docker's
// install documentation; fetched material that does not carry it is
// rejected.
const (
	downloadBase = "https://download.docker.com/linux"

	// DefaultFingerprint pins the Docker release signing key.
	DefaultFingerprint = "9DC858229FC7DD38854AE2D88D81803C0EBFCD88"

	// DefaultChannel is the release channel used when the profile does
	// not select one.
	DefaultChannel = "stable"

	// RepoName keys descriptor filenames on both platform families.
	RepoName = "docker"

	aptKeyPath = "/etc/apt/keyrings/docker.gpg"
	rpmKeyPath = "/etc/pki/rpm-gpg/RPM-GPG-KEY-docker"
)

// Config controls where trust material comes from and how it is
// pinned. The zero value fetches Docker's key for the detected
// distribution and pins Docker's published fingerprint.
type Config struct {
	// KeyURL overrides the distribution-derived key source.
	KeyURL string

	// Fingerprint is the pinned primary key fingerprint, hex digits
	// with optional spaces, case-insensitive.
	Fingerprint string

	// Channel selects the repository channel ("stable", "test").
	Channel string
}

// Material records where trust material came from and where it was
// installed. Repository descriptors are only ever written against a
// Material, which keeps the key-before-repository ordering visible in
// the API.
type Material struct {
	KeyURL      string // source the key was fetched from
	KeyPath     string // installed location on the host
	Fingerprint string // authenticated primary key fingerprint, uppercase hex
	RepoURL     string // repository base URL the key signs
	Channel     string // release channel the repository will serve
}

// TrustFetchError reports key material that could not be fetched or
// could not be authenticated. Neither case leaves any trust state on
// the host.
type TrustFetchError struct {
	URL   string
	Cause error
}

func (e *TrustFetchError) Error() string {
	return fmt.Sprintf("trust material from %s rejected: %v", e.URL, e.Cause)
}

func (e *TrustFetchError) Unwrap() error {
	return e.Cause
}
