package shell

import "fmt"

// Manager applies the shell fragment for the provisioned user
type Manager struct {
	homeDir string
}

// NewManager creates a new shell manager
func NewManager(config Config) (*Manager, error) {
	homeDir := config.HomeDir
	if homeDir == "" {
		resolved, err := HomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		homeDir = resolved
	}

	return &Manager{homeDir: homeDir}, nil
}

// Apply upserts the managed block for the given shell. Re-running
// against an rc file that already carries exactly this block is a
// no-op: no write, no backup.
func (m *Manager) Apply(shell ShellType, aliases map[string]string, opts SetupOptions) (*SetupResult, error) {
	if err := ValidateShell(shell); err != nil {
		return nil, err
	}

	rcPath, err := RCFilePath(shell, m.homeDir)
	if err != nil {
		return nil, fmt.Errorf("resolve RC file path: %w", err)
	}
	if err := validateTarget(rcPath); err != nil {
		return nil, err
	}

	fragment, err := RenderFragment(shell, aliases)
	if err != nil {
		return nil, fmt.Errorf("render fragment: %w", err)
	}

	result := &SetupResult{
		Shell:    shell,
		RCFile:   rcPath,
		Fragment: fragment,
	}

	current, err := readIfExists(rcPath)
	if err != nil {
		return nil, err
	}

	updated, err := spliceManagedBlock(current, fragment)
	if err != nil {
		return nil, &RCFileError{Path: rcPath, Message: "managed block is corrupt", Cause: err}
	}

	if updated == current {
		return result, nil
	}
	result.Changed = true

	if opts.DryRun {
		return result, nil
	}

	// Backup before the first write, never for no-op runs
	if opts.Backup && current != "" {
		backupPath, err := BackupRCFile(rcPath)
		if err != nil {
			return nil, fmt.Errorf("backup RC file: %w", err)
		}
		result.BackupPath = backupPath
	}

	if err := writeAtomic(rcPath, updated); err != nil {
		return nil, fmt.Errorf("update RC file: %w", err)
	}

	return result, nil
}

// DetectAndApply detects the user's shell and applies the fragment
func (m *Manager) DetectAndApply(aliases map[string]string, opts SetupOptions) (*SetupResult, error) {
	detection, err := DetectShell()
	if err != nil {
		return nil, fmt.Errorf("detect shell: %w", err)
	}

	if !detection.Shell.IsValid() {
		return nil, &UnsupportedShellError{Shell: detection.Shell.String()}
	}

	return m.Apply(detection.Shell, aliases, opts)
}
