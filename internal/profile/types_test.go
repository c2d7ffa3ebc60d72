package profile

import (
	"strings"
	"testing"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		errPart string
	}{
		{
			name:    "defaults valid",
			opts:    DefaultOptions(),
			wantErr: false,
		},
		{
			name:    "stable channel",
			opts:    Options{Channel: "stable"},
			wantErr: false,
		},
		{
			name:    "test channel",
			opts:    Options{Channel: "test"},
			wantErr: false,
		},
		{
			name:    "unknown channel",
			opts:    Options{Channel: "nightly"},
			wantErr: true,
			errPart: "channel",
		},
		{
			name:    "valid package names",
			opts:    Options{ExtraPackages: []string{"vim", "g++", "libssl3", "python3.12", "build-essential"}},
			wantErr: false,
		},
		{
			name:    "package name with space",
			opts:    Options{ExtraPackages: []string{"bad name"}},
			wantErr: true,
			errPart: "invalid package name",
		},
		{
			name:    "package name with shell metacharacters",
			opts:    Options{ExtraPackages: []string{"vim;rm"}},
			wantErr: true,
			errPart: "invalid package name",
		},
		{
			name:    "package name starting with dash",
			opts:    Options{ExtraPackages: []string{"-vim"}},
			wantErr: true,
			errPart: "invalid package name",
		},
		{
			name:    "empty package name",
			opts:    Options{ExtraPackages: []string{""}},
			wantErr: true,
			errPart: "invalid package name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errPart != "" && !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.errPart)
			}
		})
	}
}

func TestOptions_Validate_NamesOffendingValue(t *testing.T) {
	opts := Options{Channel: "nightly"}

	err := opts.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	if !strings.Contains(err.Error(), "nightly") {
		t.Errorf("error should name the offending value, got: %v", err)
	}
	if !strings.Contains(err.Error(), "stable test") {
		t.Errorf("error should enumerate accepted values, got: %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Channel != "" {
		t.Errorf("Channel = %q, want empty (no override)", opts.Channel)
	}
	if !opts.ShellAliases {
		t.Error("ShellAliases should default to true")
	}
	if opts.DockerGroup {
		t.Error("DockerGroup should default to false")
	}
	if len(opts.ExtraPackages) != 0 {
		t.Errorf("ExtraPackages = %v, want empty", opts.ExtraPackages)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "channel", Message: "invalid value"}
	want := "profile validation failed for channel: invalid value"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ValidationError{Message: "broken"}
	want = "profile validation failed: broken"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
