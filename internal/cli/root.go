// Package cli implements the notetasks command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/notetasks/internal/logging"
	"github.com/ppiankov/notetasks/internal/model"
)

// Version is overridden at build time with -ldflags "-X .../cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile  string
	logLevel string
	debug    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "notetasks",
	Short: "Extract tasks from Markdown notes into a CalDAV todo list",
	Long: `notetasks scans the notes you touched on a given day, asks a language
model to pick out action items, turns phrases like "next monday" or
"on the 5th" into due dates, and files the tasks in a CalDAV todo list.

Tasks already on the list are skipped.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notetasks %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/notetasks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warning, error, critical)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable detailed debug logging")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "notetasks"))
		}
		viper.AddConfigPath("/etc/notetasks")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// NOTETASKS_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("NOTETASKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// setDefaults registers every config key so environment variables can
// override keys absent from the config file.
func setDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaultTree(v, "", tree)

	// omitempty keys never appear in the marshalled tree
	for _, key := range []string{
		"llm.model", "llm.base_url", "llm.api_key", "llm.prompt_file",
		"llm.http_proxy", "llm.https_proxy", "llm.no_proxy", "caldav.password",
		"caldav.http_proxy", "caldav.https_proxy", "caldav.no_proxy", "log.dir",
	} {
		if !v.IsSet(key) {
			v.SetDefault(key, "")
		}
	}
}

func setDefaultTree(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			setDefaultTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, config file, and environment into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(cfg)
	return cfg, nil
}

// applyProviderEnv fills provider settings from their conventional variables
func applyProviderEnv(cfg *model.Config) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// newLogger builds the process logger from config and the global flags
func newLogger(cfg *model.Config) (*zap.SugaredLogger, error) {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:    level,
		Encoding: cfg.Log.Encoding,
		Dir:      model.ExpandHome(cfg.Log.Dir),
	})
}
