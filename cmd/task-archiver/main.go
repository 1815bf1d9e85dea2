// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the task-archiver CLI. It moves
// completed tasks out of markdown notes into an archive section of the same
// note or into separate archive notes.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/task-archiver/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// configName is the config file name without extension.
const configName = "task-archiver"

var logger = zap.NewNop()

// rootCmd is the base command for the task-archiver CLI.
var rootCmd = &cobra.Command{
	Use:   "task-archiver",
	Short: "Archive completed tasks in markdown notes",
	Long: `task-archiver moves completed tasks out of markdown notes. Tasks are list
items with a checkbox ("- [x] done"); rules choose which checkbox glyphs and
which files are archived, and whether tasks go under an archive heading of
the same note or into a separate archive note.

Use archive to move tasks, list to preview, watch to archive on every save,
and history to see what was moved.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./task-archiver.yaml or ~/.config/task-archiver/task-archiver.yaml)")
	rootCmd.PersistentFlags().String("vault", "", "vault directory (overrides vault_dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	_ = viper.BindPFlag("vault_dir", rootCmd.PersistentFlags().Lookup("vault"))
}

func initConfig() {
	setDefaults(types.DefaultConfig())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	viper.SetEnvPrefix("TASK_ARCHIVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg with viper so nested keys can be
// overridden from the environment.
func setDefaults(cfg types.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return
	}
	for k, v := range m {
		viper.SetDefault(k, v)
	}
}

// loadConfig decodes the merged viper settings over the defaults.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
