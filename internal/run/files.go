package run

import (
	"context"
	"fmt"
)

// WriteFile places data at an absolute path on the host through the
// runner, creating parent directories and setting world-readable
// permissions. Routing file writes through the runner keeps privilege
// escalation and dry-run semantics uniform with process invocations:
// the same sudo session that runs the package manager writes its
// trust material and repository descriptors.
//
// The write truncates and replaces any existing file, so re-running
// with identical data produces a byte-identical result.
func WriteFile(ctx context.Context, r Runner, path string, data []byte) error {
	res, err := r.Run(ctx, Command{
		Name:  "sh",
		Args:  []string{"-c", `mkdir -p "$(dirname "$1")" && cat > "$1" && chmod 0644 "$1"`, "sh", path},
		Stdin: data,
		Sudo:  true,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if !res.Success() {
		return fmt.Errorf("write %s: %s", path, res.Detail())
	}
	return nil
}
