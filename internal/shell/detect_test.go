package shell

import (
	"testing"
)

func TestDetectShell(t *testing.T) {
	tests := []struct {
		name           string
		shellEnv       string
		wantShell      ShellType
		wantMethod     string
		wantConfidence string
	}{
		{
			name:           "Bash from SHELL",
			shellEnv:       "/bin/bash",
			wantShell:      ShellBash,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
		{
			name:           "Zsh from SHELL",
			shellEnv:       "/usr/bin/zsh",
			wantShell:      ShellZsh,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
		{
			name:           "Fish from SHELL",
			shellEnv:       "/usr/local/bin/fish",
			wantShell:      ShellFish,
			wantMethod:     "$SHELL environment variable",
			wantConfidence: "high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHELL", tt.shellEnv)

			result, err := DetectShell()
			if err != nil {
				t.Fatalf("DetectShell() error = %v", err)
			}

			if result.Shell != tt.wantShell {
				t.Errorf("DetectShell() shell = %v, want %v", result.Shell, tt.wantShell)
			}
			if result.Method != tt.wantMethod {
				t.Errorf("DetectShell() method = %v, want %v", result.Method, tt.wantMethod)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("DetectShell() confidence = %v, want %v", result.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestDetectShell_UnusableSHELL(t *testing.T) {
	// With $SHELL useless, detection falls back to the parent process.
	// What that finds depends on how the test binary was launched, so
	// only the two legitimate outcomes are accepted.
	for _, env := range []string{"/bin/ksh", ""} {
		t.Setenv("SHELL", env)

		result, err := DetectShell()
		if err != nil {
			t.Fatalf("DetectShell() error = %v", err)
		}

		switch result.Method {
		case "detection failed":
			if result.Shell != ShellUnknown {
				t.Errorf("failed detection should report unknown, got %v", result.Shell)
			}
		case "parent process":
			if !result.Shell.IsValid() {
				t.Errorf("parent process detection should report a valid shell, got %v", result.Shell)
			}
		default:
			t.Errorf("unexpected method %q for SHELL=%q", result.Method, env)
		}
	}
}

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		name      string
		shellPath string
		want      ShellType
	}{
		{"Bash - /bin/bash", "/bin/bash", ShellBash},
		{"Bash - /usr/bin/bash", "/usr/bin/bash", ShellBash},
		{"Zsh - /bin/zsh", "/bin/zsh", ShellZsh},
		{"Zsh - /usr/local/bin/zsh", "/usr/local/bin/zsh", ShellZsh},
		{"Fish - /usr/bin/fish", "/usr/bin/fish", ShellFish},
		{"Uppercase name", "/bin/BASH", ShellBash},
		{"Bare name", "zsh", ShellZsh},
		{"Unknown - ksh", "/bin/ksh", ShellUnknown},
		{"Unknown - empty", "", ShellUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseShellFromPath(tt.shellPath); got != tt.want {
				t.Errorf("parseShellFromPath(%q) = %v, want %v", tt.shellPath, got, tt.want)
			}
		})
	}
}

func TestValidateShell(t *testing.T) {
	for _, shell := range SupportedShells() {
		if err := ValidateShell(shell); err != nil {
			t.Errorf("ValidateShell(%v) = %v, want nil", shell, err)
		}
	}

	if err := ValidateShell(ShellUnknown); err == nil {
		t.Error("ValidateShell(unknown) should fail")
	}
	if err := ValidateShell(ShellType("tcsh")); err == nil {
		t.Error("ValidateShell(tcsh) should fail")
	}
}

func TestShellType_IsValid(t *testing.T) {
	tests := []struct {
		shell ShellType
		want  bool
	}{
		{ShellBash, true},
		{ShellZsh, true},
		{ShellFish, true},
		{ShellUnknown, false},
		{ShellType("powershell"), false},
	}

	for _, tt := range tests {
		if got := tt.shell.IsValid(); got != tt.want {
			t.Errorf("%v.IsValid() = %v, want %v", tt.shell, got, tt.want)
		}
	}
}
