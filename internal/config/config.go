// Package config handles modeler configuration loading and management.
package config

// Config holds all modeler settings.
type Config struct {
	Editor  EditorConfig  `yaml:"editor" toml:"editor"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	History HistoryConfig `yaml:"history" toml:"history"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// EditorConfig holds editing session settings.
type EditorConfig struct {
	TextureSize        int  `yaml:"texture_size" toml:"texture_size"`               // Texture resolution new cubes map against
	ValidateSelections bool `yaml:"validate_selections" toml:"validate_selections"` // Check selections before every edit
}

// ExportConfig holds OBJ import and export settings.
type ExportConfig struct {
	Scale  float64 `yaml:"scale" toml:"scale"`     // Model units to blocks
	FlipUV bool    `yaml:"flip_uv" toml:"flip_uv"` // Mirror V on import
}

// HistoryConfig holds undo settings.
type HistoryConfig struct {
	Limit int `yaml:"limit" toml:"limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TextureSize:        64,
			ValidateSelections: false,
		},
		Export: ExportConfig{
			Scale:  0.0625,
			FlipUV: false,
		},
		History: HistoryConfig{
			Limit: 128,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
