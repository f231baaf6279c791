// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/logging"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. This function is designed to be called
// once at application startup so that configuration is loaded and available
// to all other packages. A non-empty cfgFile pins the config file path and
// skips the search.
func InitConfig(cfgFile string) {
	// --- Set Search Paths ---
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")                // Current working directory
		viper.AddConfigPath("/etc/harvester/")  // System-wide configuration
		viper.AddConfigPath("$HOME/.harvester") // User-specific configuration
	}

	// --- Set Defaults ---
	const defaultUA = "dataset-harvester/1.0 (+https://github.com/openharvest/harvester)"
	viper.SetDefault("catalogue.user_agent", defaultUA)
	viper.SetDefault("catalogue.request_timeout", "15s")

	viper.SetDefault("spider.user_agent", defaultUA)
	viper.SetDefault("spider.respect_robots", true)
	viper.SetDefault("spider.concurrency", 8)
	viper.SetDefault("spider.delay", "1s")
	viper.SetDefault("spider.request_timeout", "30s")
	viper.SetDefault("spider.item_limit", 0)
	viper.SetDefault("spider.page_limit", 0)
	viper.SetDefault("spider.keep_empty_types", false)

	viper.SetDefault("harvest.output", "datasets.json")
	viper.SetDefault("harvest.api_links", "api_links.txt")

	// --- Environment Variables ---
	viper.SetEnvPrefix("HARVESTER") // e.g., HARVESTER_SPIDER_CONCURRENCY=4
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// --- Read Config File ---
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; proceed with defaults and env vars.
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
