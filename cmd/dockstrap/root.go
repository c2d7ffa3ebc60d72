package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockstrap/dockstrap/internal/logging"
	"github.com/dockstrap/dockstrap/internal/trust"
)

type rootFlags struct {
	verbose bool
	logJSON bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "dockstrap",
		Short: "Provision Docker Engine on Linux hosts",
		Long: `dockstrap installs Docker Engine from the official repositories,
verifies the installation by running a real workload, and optionally
sets up shell aliases and docker group membership for the invoking
user. Supported hosts are Ubuntu, Debian, Rocky and Alma Linux on
amd64 and arm64.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "Emit log lines as JSON")

	initConfig()

	cmd.AddCommand(newProvisionCmd(flags))
	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newPlatformCmd())
	cmd.AddCommand(newScaffoldCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initConfig layers DOCKSTRAP_* environment variables over the
// built-in defaults. Profile values and command-line flags take
// precedence at resolution time.
func initConfig() {
	viper.SetEnvPrefix("DOCKSTRAP")
	viper.AutomaticEnv()

	viper.SetDefault("channel", trust.DefaultChannel)
	viper.SetDefault("key_url", "")
	viper.SetDefault("fingerprint", "")
}

// newLogger builds the run logger from the persistent flags. Logs go
// to stderr so stdout stays free for progress lines and results.
func newLogger(flags *rootFlags) (*logging.Logger, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, JSON: flags.logJSON})
}
