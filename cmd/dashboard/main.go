package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwalitptl/clinic-dashboard/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Clinic dashboard backend for a FHIR API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Debug().Str("command", cmd.Name()).Msg("command finished")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a config file (default: ./config.yaml, ./config/config.yaml)")
	flags.String("base-url", "", "FHIR API base URL")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console, json)")

	_ = opts.v.BindPFlag("fhir.base_url", flags.Lookup("base-url"))
	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newPatientsCmd(opts))
	rootCmd.AddCommand(newAppointmentsCmd(opts))

	return rootCmd
}
