package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Download DownloadConfig `mapstructure:"download"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Registry RegistryConfig `mapstructure:"registry"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir             string `mapstructure:"dir"`
	ConcurrentLimit int    `mapstructure:"concurrent_limit"`
}

// EngineConfig contains extraction-engine configuration
type EngineConfig struct {
	YTDLPBinary string        `mapstructure:"ytdlp_binary"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ListTimeout time.Duration `mapstructure:"list_timeout"`
}

// RegistryConfig contains task-registry configuration
type RegistryConfig struct {
	TaskTTL         time.Duration `mapstructure:"task_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// CatalogConfig contains format-catalog configuration
type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			Dir:             "$HOME/Downloads/mediagrab",
			ConcurrentLimit: 4,
		},
		Engine: EngineConfig{
			YTDLPBinary: "yt-dlp",
			Timeout:     60 * time.Minute,
			ListTimeout: 60 * time.Second,
		},
		Registry: RegistryConfig{
			TaskTTL:         24 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Catalog: CatalogConfig{
			CacheTTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
