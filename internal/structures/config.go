package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	// Runtime is auto, native or browser.
	Runtime      string `yaml:"runtime" validate:"required|in:auto,native,browser"`
	Driver       string `yaml:"driver" validate:"in:relational,document"`
	SqlitePath   string `yaml:"sqlitePath"`
	DocumentPath string `yaml:"documentPath"`
}

type BackupConfig struct {
	Dir           string        `yaml:"dir" validate:"required|unixPath"`
	Interval      time.Duration `yaml:"interval"`
	Keep          int           `yaml:"keep" validate:"min:0"`
	OnShutdown    bool          `yaml:"onShutdown"`
	MaxImportSize int64         `yaml:"maxImportSize"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	// TTL in seconds.
	TTL int `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server        `yaml:"webServer"`
	Storage   StorageConfig `yaml:"storage"`
	Backup    BackupConfig  `yaml:"backup"`
	Logger    LoggerConfig  `yaml:"logger"`
	Cache     CacheConfig   `yaml:"cache"`
	Metrics   MetricsConfig `yaml:"metrics"`
}
