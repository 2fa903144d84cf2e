// Package commands implements the operator-surface CLI: read-only
// inspection of the compiled-in/configured subscription registry and, once
// a process is wired up around internal/beadapter, of its live adapter
// registry. None of these commands mutate state — the static registry is
// immutable after construction, exactly as internal/subscr documents.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/mgmtd/beadapter/internal/registry"
	"github.com/mgmtd/beadapter/internal/subscr"
	"github.com/mgmtd/beadapter/pkg/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mgmtd-beadapterd",
	Short: "Backend-adapter core operator CLI",
	Long: `mgmtd-beadapterd inspects the management daemon's backend-adapter core:
the compiled-in (or configured) static XPath subscription registry, and the
live client-adapter registry of a running core.

Use "mgmtd-beadapterd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/mgmtd-beadapterd/config.yaml)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(xpathRegisterCmd)
	rootCmd.AddCommand(xpathSubscrInfoCmd)
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the effective configuration from the --config flag, or
// the compiled-in defaults if neither a flag nor the default path resolve
// to a file.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	if config.DefaultConfigExists() {
		return config.Load(config.GetDefaultConfigPath())
	}
	return config.GetDefaultConfig(), nil
}

// loadSubscriptions builds the static subscription map the running core
// would use, from the same config the core itself loads.
func loadSubscriptions() (*subscr.Map, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return config.LoadRegistry(cfg.Registry)
}

// liveRegistry is the adapter registry this CLI can inspect. A standalone
// invocation of this CLI has no running core to attach to — the socket
// accept loop and any out-of-process attachment mechanism are out of
// scope here — so this always returns a fresh, empty Registry; a process
// that embeds internal/beadapter alongside this CLI's command tree would
// instead pass its own live *registry.Registry in.
func liveRegistry() *registry.Registry {
	return registry.New()
}
