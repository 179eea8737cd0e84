package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/regland/regland/logger"
)

// Watch re-reads the config file on change, re-applies the log level and
// hands the new settings to onChange. Invalid edits are logged and ignored.
// It does nothing when v was not loaded from a file.
func Watch(v *viper.Viper, onChange func(*Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := Decode(v)
		if err != nil {
			logger.Error("Config reload failed", zap.String("file", evt.Name), zap.Error(err))
			return
		}
		logger.SetLevel(cfg.Log.Level)
		logger.Info("Config reloaded", zap.String("file", evt.Name), zap.String("log_level", cfg.Log.Level))
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}
