// Package cli provides command-line interface commands for scangate.
// This package implements the Cobra-based CLI structure with commands for
// one-off scans, the HTTP API server, report conversion and API key handling.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/scangate/internal/config"
	"github.com/anstrom/scangate/internal/logging"
)

// Environment variables are read as SCANGATE_<SECTION>_<KEY>.
const envPrefix = "SCANGATE"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scangate",
	Short: "Validated nmap scanning service",
	Long: `scangate runs nmap port scans against strictly validated targets.

Scan output is sanitized before it is shown, parsed into per-host port
records and statistics, and can be exported as JSON, CSV or a plain-text log.
The same engine is available from the command line and over an HTTP API.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	// Bind flags to viper
	bindFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	bindFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag.Name, err)
	}
}

// normalizeFlagName lets --nmap_path and --nmap-path name the same flag.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/scangate")
		viper.AddConfigPath("/etc/scangate")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	initLogging()
}

// loadConfig loads the discovered config file and applies environment and
// flag overrides tracked by viper.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = viper.ConfigFileUsed()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, viper.GetViper())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies values set through flags or SCANGATE_* variables
// onto cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("scanning.nmap_path") {
		cfg.Scanning.NmapPath = v.GetString("scanning.nmap_path")
	}
	if v.IsSet("scanning.timeout") {
		cfg.Scanning.Timeout = v.GetDuration("scanning.timeout")
	}
	if v.IsSet("scanning.max_concurrent") {
		cfg.Scanning.MaxConcurrent = v.GetInt("scanning.max_concurrent")
	}
	if v.IsSet("api.host") {
		cfg.API.Host = v.GetString("api.host")
	}
	if v.IsSet("api.port") {
		cfg.API.Port = v.GetInt("api.port")
	}
	if v.IsSet("api.auth.enabled") {
		cfg.API.Auth.Enabled = v.GetBool("api.auth.enabled")
	}
	if v.IsSet("api.rate_limit.enabled") {
		cfg.API.RateLimit.Enabled = v.GetBool("api.rate_limit.enabled")
	}
	if level := v.GetString("logging.level"); level != "" {
		cfg.Logging.Level = logging.LogLevel(level)
	}
	if format := v.GetString("logging.format"); format != "" {
		cfg.Logging.Format = logging.LogFormat(format)
	}
	if v.IsSet("logging.output") {
		cfg.Logging.Output = v.GetString("logging.output")
	}
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	cfg, err := loadConfig()
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return
	}

	logConfig := cfg.Logging
	logConfig.AddSource = logConfig.Level == logging.LevelDebug

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	if verbose {
		logging.Info("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format)
	}
}
