package providers

import (
	"fmt"
	"path/filepath"
	"soulhealing/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8095)
	v.SetDefault("storage.runtime", RuntimeAuto)
	v.SetDefault("storage.sqlitePath", "data/soulhealing.db")
	v.SetDefault("storage.documentPath", "data/soulhealing.snap")
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("backup.interval", 24*time.Hour)
	v.SetDefault("backup.keep", 7)
	v.SetDefault("backup.onShutdown", true)
	v.SetDefault("backup.maxImportSize", 32<<20)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("cache.ttl", 30)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "SOULHEALING_LOG_LEVEL")
	v.BindEnv("storage.runtime", "SOULHEALING_RUNTIME")
	v.BindEnv("storage.driver", "SOULHEALING_DRIVER")
	v.BindEnv("storage.sqlitePath", "SOULHEALING_SQLITE_PATH")
	v.BindEnv("storage.documentPath", "SOULHEALING_DOCUMENT_PATH")
	v.BindEnv("backup.dir", "SOULHEALING_BACKUP_DIR")
	v.BindEnv("backup.interval", "SOULHEALING_BACKUP_INTERVAL")
	v.BindEnv("cache.enabled", "SOULHEALING_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SoulHealing"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
