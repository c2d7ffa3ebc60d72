package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const composeFileName = "compose.yaml"

// composeExample is the starter file scaffold writes. It pairs a web
// container with a database so the depends_on/healthcheck wiring is
// shown in context.
const composeExample = `# A starting point for a small web service with a database.
# Adjust images and environment to taste, then bring it up with:
#
#   docker compose up -d
#
services:
  web:
    image: nginx:alpine
    ports:
      - "8080:80"
    depends_on:
      db:
        condition: service_healthy
    restart: unless-stopped

  db:
    image: postgres:16-alpine
    environment:
      POSTGRES_PASSWORD: example
    volumes:
      - db-data:/var/lib/postgresql/data
    healthcheck:
      test: ["CMD-SHELL", "pg_isready -U postgres"]
      interval: 5s
      timeout: 3s
      retries: 10

volumes:
  db-data:
`

func newScaffoldCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scaffold [dir]",
		Short: "Write an annotated Compose file to start from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runScaffold(cmd.OutOrStdout(), dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing compose file")
	return cmd
}

func runScaffold(out io.Writer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, composeFileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(composeExample), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(out, "✓ Created %s\n", path)
	fmt.Fprintln(out)
	if dir == "." {
		fmt.Fprintln(out, "Try it: docker compose up -d")
	} else {
		fmt.Fprintf(out, "Try it: cd %s && docker compose up -d\n", dir)
	}
	return nil
}
