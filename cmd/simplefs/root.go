package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-simplefs/internal/config"
	"github.com/mit-pdos/go-simplefs/internal/logger"
	"github.com/mit-pdos/go-simplefs/util"
)

const version = "v0.1.0"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "simplefs",
		Short: "A simulated flat file system",
		Long: `simplefs runs scripted workloads against a simulated single-volume
file system: a fixed inode table with direct block pointers over an array of
512-byte blocks tracked by a free-block bitmap.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// If config file was explicitly specified via flag, reload
			if cmd.Flags().Changed("config") && cfgFile != "" {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				config.Instance = cfg
				config.ConfigFile = cfgFile
				config.ConfigLoaded = true
			}

			// CLI flags override config settings
			if cmd.Flags().Changed("debug") {
				config.Instance.Debug, _ = cmd.Flags().GetBool("debug")
			}
			if cmd.Flags().Changed("log-format") {
				config.Instance.LogFormat, _ = cmd.Flags().GetString("log-format")
			}
			return initLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", config.Instance.Debug, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", config.Instance.LogFormat, "Log format: json or human")

	rootCmd.AddCommand(newRunCmd(), newDemoCmd(), newInfoCmd(), newVersionCmd())
	return rootCmd
}

func initLogging() error {
	err := logger.InitLogger(logger.LoggerConfig{
		Debug:     config.Instance.Debug,
		LogFormat: config.Instance.LogFormat,
		LogFile:   config.Instance.LogFile,
	})
	if err != nil {
		return err
	}
	if config.Instance.Debug {
		util.Debug = config.Instance.DebugLevel
	} else {
		util.Debug = 0
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "simplefs "+version)
		},
	}
}
