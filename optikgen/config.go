package optikgen

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/optik-go/optik/optikgen/sink"
)

// Config holds the configuration for declaration generation. The exported
// fields map to optik.toml:
//
//	packages = ["./internal/model", "./api"]
//	out_file = "optik_gen.go"
type Config struct {
	// Packages are the package patterns to scan, go command semantics.
	Packages []string `toml:"packages"`

	// Dir is the working directory for package loading.
	// Empty means the current directory.
	Dir string `toml:"dir"`

	// OutFile is the name of the generated file written into each
	// annotated package. Default: "optik_gen.go".
	OutFile string `toml:"out_file"`

	// Sink overrides the output destination. Nil writes into the package
	// directories.
	Sink sink.OutputSink `toml:"-"`
}

// LoadConfig reads a TOML config file, typically optik.toml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.OutFile == "" {
		result.OutFile = GeneratedFile
	}

	return &result
}
