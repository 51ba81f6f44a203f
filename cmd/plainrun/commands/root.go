// Package commands implements the plainrun subcommands.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/plain/internal/config"
	"github.com/born-ml/plain/internal/logging"
)

const version = "v0.1.0-dev"

var (
	cfgFile string
	v       = viper.New()
	running *config.Running
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plainrun",
		Short: "Run the plain CPU layer kernels",
		Long: `plainrun builds a chain of layers, binds each to its plain CPU kernel
and runs the forward, backward and Hessian-diagonal passes over a random batch.`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadViper(v, cfgFile)
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Logging); err != nil {
				return err
			}
			running = cfg
			logging.Get().WithField("threads", cfg.Threads()).Debug("configuration loaded")
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.Int("threads", 0, "worker threads per dispatch (0 = one per CPU)")
	flags.Int("min-chunk-size", config.Default().MinChunkSize, "smallest element range per worker")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	_ = v.BindPFlag("threads", flags.Lookup("threads"))
	_ = v.BindPFlag("min_chunk_size", flags.Lookup("min-chunk-size"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))

	cmd.AddCommand(newRunCmd(), newKernelsCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command and closes the log file on the way out.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := logging.Close(); err == nil {
		err = cerr
	}
	return err
}
