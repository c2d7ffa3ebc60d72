package shell

// Managed block markers and backup naming
const (
	// MarkerBegin opens the managed block in an rc file. Everything
	// between the markers belongs to dockstrap and is rewritten on
	// every provisioning run.
	MarkerBegin = "# >>> dockstrap >>>"

	// MarkerEnd closes the managed block
	MarkerEnd = "# <<< dockstrap <<<"

	// BackupSuffix is appended to the rc file path for backups
	BackupSuffix = ".dockstrap-backup"
)
