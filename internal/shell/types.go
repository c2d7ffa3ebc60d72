package shell

import "fmt"

// ShellType represents a supported shell
type ShellType string

const (
	// ShellBash represents the Bash shell
	ShellBash ShellType = "bash"
	// ShellZsh represents the Z shell
	ShellZsh ShellType = "zsh"
	// ShellFish represents the Fish shell
	ShellFish ShellType = "fish"
	// ShellUnknown represents an unknown or unsupported shell
	ShellUnknown ShellType = "unknown"
)

// String returns the string representation of the shell type
func (s ShellType) String() string {
	return string(s)
}

// IsValid returns true if the shell type is supported
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh, ShellFish:
		return true
	default:
		return false
	}
}

// Config holds configuration for the shell manager
type Config struct {
	// HomeDir overrides resolution of the provisioned user's home
	// directory. Empty means resolve it, honoring SUDO_USER.
	HomeDir string
}

// SetupOptions holds options for applying the shell fragment
type SetupOptions struct {
	// Backup creates a backup of the rc file before modification
	Backup bool
	// DryRun reports what would change without writing anything
	DryRun bool
}

// SetupResult contains the result of applying the shell fragment
type SetupResult struct {
	// Shell is the detected or specified shell type
	Shell ShellType
	// RCFile is the path to the shell's configuration file
	RCFile string
	// Changed indicates whether the rc file was (or would be) rewritten
	Changed bool
	// BackupPath is the path to the backup file (if created)
	BackupPath string
	// Fragment is the managed-block body that was applied
	Fragment string
}

// DetectionResult contains the result of shell detection
type DetectionResult struct {
	// Shell is the detected shell type
	Shell ShellType
	// Method describes how the shell was detected
	Method string
	// ShellPath is the filesystem path to the shell binary
	ShellPath string
	// Confidence is the confidence level (high, medium, low)
	Confidence string
}

// UnsupportedShellError represents an unsupported shell error
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", e.Shell)
}

// RCFileError represents an error with shell rc file operations
type RCFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RCFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rc file error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("rc file error (%s): %s", e.Path, e.Message)
}

func (e *RCFileError) Unwrap() error {
	return e.Cause
}
