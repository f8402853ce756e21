package config

import "github.com/spf13/viper"

const defaultSessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"

func Default() Config {
	return Config{
		Listen:        ":8080",
		Env:           "development",
		SessionSecret: defaultSessionSecret,
		Timezone:      "UTC",
		ItemsPerPage:  10,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "organizer.db",
		},
		Log: LogConfig{
			Level:    "info",
			JSON:     false,
			File:     "",
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Telegram: TelegramConfig{
			Token:      "",
			DigestTime: "08:00",
		},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("listen", defaults.Listen)
	v.SetDefault("env", defaults.Env)
	v.SetDefault("session_secret", defaults.SessionSecret)
	v.SetDefault("timezone", defaults.Timezone)
	v.SetDefault("items_per_page", defaults.ItemsPerPage)

	v.SetDefault("database.driver", defaults.Database.Driver)
	v.SetDefault("database.dsn", defaults.Database.DSN)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.json", defaults.Log.JSON)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	v.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	v.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	v.SetDefault("telegram.token", defaults.Telegram.Token)
	v.SetDefault("telegram.digest_time", defaults.Telegram.DigestTime)
}
