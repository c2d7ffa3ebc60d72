package trust

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// newTestKey generates a throwaway signing key and returns its armored
// form, binary form, and primary key fingerprint.
func newTestKey(t *testing.T) (armored, binary []byte, fingerprint string) {
	t.Helper()

	entity, err := openpgp.NewEntity("Test Repo Signing", "", "repo@example.com", nil)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	var bin bytes.Buffer
	if err := entity.Serialize(&bin); err != nil {
		t.Fatalf("failed to serialize key: %v", err)
	}

	var arm bytes.Buffer
	w, err := armor.Encode(&arm, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("failed to open armor encoder: %v", err)
	}
	if _, err := w.Write(bin.Bytes()); err != nil {
		t.Fatalf("failed to armor key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close armor encoder: %v", err)
	}

	fingerprint = strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint[:]))
	return arm.Bytes(), bin.Bytes(), fingerprint
}

func TestParseKeyring(t *testing.T) {
	armored, binary, _ := newTestKey(t)

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name: "armored_key",
			data: armored,
		},
		{
			name: "binary_key",
			data: binary,
		},
		{
			name:    "garbage",
			data:    []byte("this is not a key"),
			wantErr: true,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyring, err := ParseKeyring(tt.data)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(keyring) == 0 {
				t.Error("expected non-empty keyring")
			}
		})
	}
}

func TestDearmor(t *testing.T) {
	armored, _, fingerprint := newTestKey(t)

	dearmored, err := Dearmor(armored)
	if err != nil {
		t.Fatalf("Dearmor failed: %v", err)
	}

	if bytes.Contains(dearmored, []byte("BEGIN PGP")) {
		t.Error("dearmored output still contains armor header")
	}

	// The binary form must parse back to the same key.
	keyring, err := ParseKeyring(dearmored)
	if err != nil {
		t.Fatalf("dearmored output does not parse: %v", err)
	}
	if _, err := VerifyFingerprint(keyring, fingerprint); err != nil {
		t.Errorf("dearmored key lost its identity: %v", err)
	}

	// Should be deterministic
	dearmored2, err := Dearmor(armored)
	if err != nil {
		t.Fatalf("second Dearmor failed: %v", err)
	}
	if !bytes.Equal(dearmored, dearmored2) {
		t.Error("dearmoring the same input twice produced different bytes")
	}
}

func TestDearmor_BinaryPassthrough(t *testing.T) {
	_, binary, _ := newTestKey(t)

	out, err := Dearmor(binary)
	if err != nil {
		t.Fatalf("Dearmor failed: %v", err)
	}
	if !bytes.Equal(out, binary) {
		t.Error("binary input should pass through unchanged")
	}
}

func TestDearmor_Garbage(t *testing.T) {
	if _, err := Dearmor([]byte("not a key at all")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestVerifyFingerprint(t *testing.T) {
	armored, _, fingerprint := newTestKey(t)
	keyring, err := ParseKeyring(armored)
	if err != nil {
		t.Fatalf("failed to parse test key: %v", err)
	}

	// A spaced, lowercase rendering of the same fingerprint, the way
	// install docs print it.
	spaced := strings.ToLower(fingerprint[:4] + " " + fingerprint[4:8] + " " + fingerprint[8:])

	tests := []struct {
		name    string
		pinned  string
		wantErr bool
	}{
		{
			name:   "exact_match",
			pinned: fingerprint,
		},
		{
			name:   "spaced_lowercase_match",
			pinned: spaced,
		},
		{
			name:    "mismatch",
			pinned:  "9DC858229FC7DD38854AE2D88D81803C0EBFCD88",
			wantErr: true,
		},
		{
			name:    "empty_pin",
			pinned:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyFingerprint(keyring, tt.pinned)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != fingerprint {
				t.Errorf("matched fingerprint = %q, want %q", got, fingerprint)
			}
		})
	}
}

func TestVerifyFingerprint_MismatchNamesBothSides(t *testing.T) {
	armored, _, fingerprint := newTestKey(t)
	keyring, _ := ParseKeyring(armored)

	pinned := "0000000000000000000000000000000000000000"
	_, err := VerifyFingerprint(keyring, pinned)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if !strings.Contains(err.Error(), pinned) {
		t.Errorf("error should name the pinned fingerprint: %v", err)
	}
	if !strings.Contains(err.Error(), fingerprint) {
		t.Errorf("error should name the fingerprint actually seen: %v", err)
	}
}

func TestNormalizeFingerprint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9DC8 5822 9FC7 DD38 854A  E2D8 8D81 803C 0EBF CD88", "9DC858229FC7DD38854AE2D88D81803C0EBFCD88"},
		{"9dc858229fc7dd38854ae2d88d81803c0ebfcd88", "9DC858229FC7DD38854AE2D88D81803C0EBFCD88"},
		{"  abc  ", "ABC"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeFingerprint(tt.in); got != tt.want {
			t.Errorf("normalizeFingerprint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
