package trust

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// ParseKeyring reads OpenPGP public key material in armored or binary
// form.
func ParseKeyring(data []byte) (openpgp.EntityList, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try binary keyring format
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse keyring: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring contains no keys")
	}
	return keyring, nil
}

// Dearmor converts armored key material to the binary packet form apt
// expects under /etc/apt/keyrings. Binary input is validated and
// passed through unchanged, which keeps repeated installs
// byte-identical.
func Dearmor(data []byte) ([]byte, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		if _, err := openpgp.ReadKeyRing(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse keyring: %w", err)
		}
		return data, nil
	}

	var buf bytes.Buffer
	for _, entity := range keyring {
		if err := entity.Serialize(&buf); err != nil {
			return nil, fmt.Errorf("serialize key: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// VerifyFingerprint checks that some primary key in the keyring
// matches the pinned fingerprint and returns the matched fingerprint
// in canonical uppercase hex. Fingerprints compare case-insensitively
// and ignore spaces.
func VerifyFingerprint(keyring openpgp.EntityList, pinned string) (string, error) {
	want := normalizeFingerprint(pinned)
	if want == "" {
		return "", fmt.Errorf("pinned fingerprint is required")
	}

	var seen []string
	for _, entity := range keyring {
		got := strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint[:]))
		if got == want {
			return got, nil
		}
		seen = append(seen, got)
	}
	return "", fmt.Errorf("no key matches pinned fingerprint %s (keyring has %s)", want, strings.Join(seen, ", "))
}

func normalizeFingerprint(fp string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fp), " ", ""))
}
