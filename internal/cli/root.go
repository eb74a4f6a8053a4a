package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/civictriage/internal/model"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "civictriage",
	Short: "Civictriage - civic complaint triage",
	Long: `Civictriage turns free-text civic complaints into categorized,
scored and stored records.

Each complaint is classified into a service category, assigned a severity
tier from its wording, located from place keywords, and given a 1-10
urgency score so the most pressing issues surface first.`,
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
	Long:  `Display the version number of Civictriage.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "civictriage %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.civictriage/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable the classification cache")
	flags.String("provider", "", "classifier provider (lexicon, openai, anthropic, ollama)")
	flags.String("model", "", "classifier model name")
	flags.String("store", "", "storage driver (csv, sqlite, postgres, memory)")
	flags.String("dsn", "", "storage location: file path for csv/sqlite, URL for postgres")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	bindFlags()

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds the global flags to their config keys
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("classifier.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("classifier.model", flags.Lookup("model"))
	_ = viper.BindPFlag("storage.driver", flags.Lookup("store"))
	_ = viper.BindPFlag("storage.dsn", flags.Lookup("dsn"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.civictriage")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Unmarshal only sees env vars for keys viper already knows
	setDefaults(model.DefaultConfig())

	// Read in environment variables that match CIVICTRIAGE_*
	viper.SetEnvPrefix("CIVICTRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func setDefaults(cfg *model.Config) {
	viper.SetDefault("classifier.provider", cfg.Classifier.Provider)
	viper.SetDefault("classifier.model", cfg.Classifier.Model)
	viper.SetDefault("classifier.base_url", cfg.Classifier.BaseURL)
	viper.SetDefault("classifier.timeout", cfg.Classifier.Timeout)
	viper.SetDefault("classifier.max_tokens", cfg.Classifier.MaxTokens)
	viper.SetDefault("classifier.http_proxy", cfg.Classifier.HTTPProxy)
	viper.SetDefault("classifier.https_proxy", cfg.Classifier.HTTPSProxy)
	viper.SetDefault("classifier.no_proxy", cfg.Classifier.NoProxy)

	viper.SetDefault("storage.driver", cfg.Storage.Driver)
	viper.SetDefault("storage.dsn", cfg.Storage.DSN)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", cfg.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("concurrency.requests_per_second", cfg.Concurrency.RequestsPerSecond)
	viper.SetDefault("concurrency.burst_size", cfg.Concurrency.BurstSize)

	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.json", cfg.Output.JSON)
}

// loadConfig merges defaults, config file, env vars and flags.
// API keys come from the provider's environment variable only.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if noCache {
		cfg.Cache.Enabled = false
	}

	switch strings.ToLower(cfg.Classifier.Provider) {
	case "openai":
		cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		cfg.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Classifier.BaseURL = baseURL
		}
	}

	return cfg, nil
}
