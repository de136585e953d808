package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"media-job-service/internal/app"
	"media-job-service/internal/config"
	"media-job-service/internal/logger"
	"media-job-service/internal/metrics"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "mediactl",
	Short:         "Operate the media job service",
	Long:          `mediactl runs thumbnail backfills, rendition reconciliation and agent job maintenance directly against the service database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mediactl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// initConfig lets a config file supply any environment key the services read,
// e.g. postgres_dsn or storage_driver. Real environment variables win.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".mediactl"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		exportToEnv(viper.GetViper())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func exportToEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, set := os.LookupEnv(env); set {
			continue
		}
		_ = os.Setenv(env, v.GetString(key))
	}
}

func isJSONOutput() bool {
	return outputFormat == "json"
}

func cliLogger(appEnv string) zerolog.Logger {
	if !verbose {
		return logger.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("env", appEnv).Logger()
}

// openCore builds the services for one command run.
func openCore(ctx context.Context, concurrency int) (*app.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.NewCore(ctx, cfg, cliLogger(cfg.AppEnv), metrics.New(), concurrency)
}
