package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// DetectShell detects the user's shell using multiple methods
func DetectShell() (*DetectionResult, error) {
	// Method 1: Try $SHELL environment variable (most reliable)
	if shell := os.Getenv("SHELL"); shell != "" {
		shellType := parseShellFromPath(shell)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:      shellType,
				Method:     "$SHELL environment variable",
				ShellPath:  shell,
				Confidence: "high",
			}, nil
		}
	}

	// Method 2: Try parent process (fallback)
	if shellType, shellPath := detectFromParentProcess(); shellType.IsValid() {
		return &DetectionResult{
			Shell:      shellType,
			Method:     "parent process",
			ShellPath:  shellPath,
			Confidence: "medium",
		}, nil
	}

	// Method 3: Could not detect shell
	return &DetectionResult{
		Shell:      ShellUnknown,
		Method:     "detection failed",
		ShellPath:  "",
		Confidence: "none",
	}, nil
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
//   - /usr/local/bin/fish -> fish
func parseShellFromPath(shellPath string) ShellType {
	// Get the base name (e.g., "/bin/bash" -> "bash")
	baseName := filepath.Base(shellPath)

	// Normalize to lowercase
	baseName = strings.ToLower(baseName)

	// Map to known shell types
	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// detectFromParentProcess attempts to detect the shell from the parent
// process. This is a fallback when $SHELL is not set, which happens
// under some sudo configurations.
func detectFromParentProcess() (ShellType, string) {
	proc, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return ShellUnknown, ""
	}

	name, err := proc.Name()
	if err != nil {
		return ShellUnknown, ""
	}

	shellType := parseShellFromPath(name)
	if !shellType.IsValid() {
		return ShellUnknown, ""
	}

	shellPath, err := proc.Exe()
	if err != nil {
		shellPath = name
	}
	return shellType, shellPath
}

// ValidateShell validates that a shell type is supported
func ValidateShell(shell ShellType) error {
	if !shell.IsValid() {
		return &UnsupportedShellError{Shell: shell.String()}
	}
	return nil
}

// SupportedShells returns a list of supported shells
func SupportedShells() []ShellType {
	return []ShellType{ShellBash, ShellZsh, ShellFish}
}
