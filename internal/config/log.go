package config

type LogConfig struct {
	Level    string            `mapstructure:"level"    yaml:"level"`
	JSON     bool              `mapstructure:"json"     yaml:"json"`
	File     string            `mapstructure:"file"     yaml:"file"`
	Rotation LogRotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"    yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"     yaml:"max_age"`
	Compress   bool `mapstructure:"compress"    yaml:"compress"`
}
