// Package config handles blockbridge configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Kernel     KernelConfig     `yaml:"kernel"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConversionConfig holds the settings conversions run with.
type ConversionConfig struct {
	CommitInfo    string `yaml:"commit_info"`    // Prefix for imported block names
	ModelUnits    string `yaml:"model_units"`    // Host working unit
	NameSeparator string `yaml:"name_separator"` // Joins commit info and block name
}

// KernelConfig holds geometry kernel settings.
type KernelConfig struct {
	MeshCells int `yaml:"mesh_cells"` // Marching cubes cells along the longest axis
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Console bool   `yaml:"console"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			CommitInfo:    "local",
			ModelUnits:    "mm",
			NameSeparator: " - ",
		},
		Kernel: KernelConfig{
			MeshCells: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Console: true,
		},
	}
}
