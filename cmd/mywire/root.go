package main

import (
	"github.com/spf13/cobra"
	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/mywirelog"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mywire query --config `config-path` [sql]",
	Short: "mywire",
	Long:  "Client-side MySQL wire-protocol engine",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(queryCmd)
}

func loadConfig() error {
	if err := config.Load(configPath); err != nil {
		return err
	}
	mywirelog.ReloadLogger(config.Get().LogFileName)
	return mywirelog.UpdateZeroLogLevel(config.Get().LogLevel)
}
