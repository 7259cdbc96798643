package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
	flagTextureSize = flag.Int("texture-size", 0, "Texture size for new cubes")
	flagHistory     = flag.Int("history", 0, "Number of undo steps to keep")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Editor.ValidateSelections = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagTextureSize > 0 {
		cfg.Editor.TextureSize = *flagTextureSize
	}
	if *flagHistory > 0 {
		cfg.History.Limit = *flagHistory
	}
}
