package config

import "github.com/spf13/cobra"

// CliConfig holds the values of the command-line flags.
type CliConfig struct {
	ConfigFile string
	EnvFile    string
	Debug      bool
}

// BindFlags registers the shared flags on cmd and returns the struct they
// fill in once cobra parses the command line.
func BindFlags(cmd *cobra.Command) *CliConfig {
	args := &CliConfig{}
	cmd.PersistentFlags().StringVar(&args.ConfigFile, "config", "", "Path to the config file")
	cmd.PersistentFlags().StringVar(&args.EnvFile, "env-file", ".env", "Path to a dotenv file, ignored when missing")
	cmd.PersistentFlags().BoolVarP(&args.Debug, "debug", "d", false, "Enable debug mode")
	return args
}
