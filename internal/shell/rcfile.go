package shell

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// HomeDir resolves the home directory of the user being provisioned.
// Under sudo that is the invoking user, not root: the shell fragment
// belongs to whoever ran the tool.
func HomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && os.Geteuid() == 0 {
		if u, err := user.Lookup(sudoUser); err == nil && u.HomeDir != "" {
			return u.HomeDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// RCFilePath returns the path to the shell's RC file under homeDir
func RCFilePath(shell ShellType, homeDir string) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	switch shell {
	case ShellBash:
		return filepath.Join(homeDir, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(homeDir, ".zshrc"), nil
	case ShellFish:
		return filepath.Join(homeDir, ".config", "fish", "config.fish"), nil
	default:
		return "", &UnsupportedShellError{Shell: shell.String()}
	}
}

// RCFileExists checks if the RC file exists
func RCFileExists(rcPath string) (bool, error) {
	info, err := os.Stat(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &RCFileError{
			Path:    rcPath,
			Message: "failed to stat file",
			Cause:   err,
		}
	}

	// Check if it's a regular file
	if !info.Mode().IsRegular() {
		return false, &RCFileError{
			Path:    rcPath,
			Message: "not a regular file",
		}
	}

	return true, nil
}

// HasManagedBlock checks if the RC file already carries a managed block
func HasManagedBlock(rcPath string) (bool, error) {
	content, err := readIfExists(rcPath)
	if err != nil {
		return false, err
	}
	return strings.Contains(content, MarkerBegin) && strings.Contains(content, MarkerEnd), nil
}

// BackupRCFile creates a backup of the RC file next to it, preserving
// the original file's permissions
func BackupRCFile(rcPath string) (string, error) {
	info, err := os.Stat(rcPath)
	if err != nil {
		return "", &RCFileError{
			Path:    rcPath,
			Message: "failed to stat file for backup",
			Cause:   err,
		}
	}

	content, err := os.ReadFile(rcPath)
	if err != nil {
		return "", &RCFileError{
			Path:    rcPath,
			Message: "failed to read file for backup",
			Cause:   err,
		}
	}

	backupPath := rcPath + BackupSuffix
	if err := os.WriteFile(backupPath, content, info.Mode().Perm()); err != nil {
		return "", &RCFileError{
			Path:    backupPath,
			Message: "failed to write backup file",
			Cause:   err,
		}
	}

	return backupPath, nil
}

// readIfExists returns the file's content, or "" when it does not
// exist yet.
func readIfExists(rcPath string) (string, error) {
	content, err := os.ReadFile(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &RCFileError{
			Path:    rcPath,
			Message: "failed to read file",
			Cause:   err,
		}
	}
	return string(content), nil
}

// renderBlock wraps a fragment body in the managed block markers. The
// rendered block carries no trailing newline.
func renderBlock(fragment string) string {
	body := strings.TrimRight(fragment, "\n")
	lines := []string{MarkerBegin, "# Managed by dockstrap; rewritten on every provisioning run."}
	if body != "" {
		lines = append(lines, strings.Split(body, "\n")...)
	}
	lines = append(lines, MarkerEnd)
	return strings.Join(lines, "\n")
}

// spliceManagedBlock returns existing with the managed block holding
// fragment: replaced in place when markers are already present (stray
// duplicate blocks collapse into one), appended otherwise. The result
// equals existing when the file already carries exactly this block, so
// callers can detect no-op runs by comparison.
func spliceManagedBlock(existing, fragment string) (string, error) {
	block := renderBlock(fragment)

	if existing == "" {
		return block + "\n", nil
	}

	if !strings.Contains(existing, MarkerBegin) {
		if strings.Contains(existing, MarkerEnd) {
			return "", fmt.Errorf("end marker without begin marker")
		}
		out := existing
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		return out + "\n" + block + "\n", nil
	}

	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	inBlock := false
	placed := false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case MarkerBegin:
			if inBlock {
				return "", fmt.Errorf("nested begin marker")
			}
			inBlock = true
			if !placed {
				out = append(out, strings.Split(block, "\n")...)
				placed = true
			}
		case MarkerEnd:
			if !inBlock {
				return "", fmt.Errorf("end marker without begin marker")
			}
			inBlock = false
		default:
			if !inBlock {
				out = append(out, line)
			}
		}
	}
	if inBlock {
		return "", fmt.Errorf("begin marker without end marker")
	}

	return strings.Join(out, "\n"), nil
}

// validateTarget rejects rc paths we should never write through:
// relative paths, uncleaned traversals, and symlinks.
func validateTarget(rcPath string) error {
	if !filepath.IsAbs(rcPath) {
		return &RCFileError{Path: rcPath, Message: "path must be absolute"}
	}
	if filepath.Clean(rcPath) != rcPath {
		return &RCFileError{Path: rcPath, Message: "path traversal detected"}
	}
	if info, err := os.Lstat(rcPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return &RCFileError{Path: rcPath, Message: "refusing to modify symlink"}
	}
	return nil
}

// writeAtomic replaces rcPath with content using a temporary file and
// rename, preserving the original file's permissions
func writeAtomic(rcPath, content string) error {
	if err := validateTarget(rcPath); err != nil {
		return err
	}

	dir := filepath.Dir(rcPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to create parent directory",
			Cause:   err,
		}
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(rcPath); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, ".dockstrap-tmp-*")
	if err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to create temporary file",
			Cause:   err,
		}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // Clean up on error

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to write content",
			Cause:   err,
		}
	}

	// Sync to disk
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to sync file",
			Cause:   err,
		}
	}

	if err := tmpFile.Close(); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to close temporary file",
			Cause:   err,
		}
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to set permissions",
			Cause:   err,
		}
	}

	// Atomic rename
	if err := os.Rename(tmpPath, rcPath); err != nil {
		return &RCFileError{
			Path:    rcPath,
			Message: "failed to rename temp file",
			Cause:   err,
		}
	}

	return nil
}
