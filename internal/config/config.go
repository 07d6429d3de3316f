// Package config loads the merge driver configuration.
//
// Every setting has a built-in default, so no file is required. A
// repository can override the defaults with a .mergepom.yaml (or .yml)
// file, parsed with gopkg.in/yaml.v3, or with a .mergepom.json file. The
// JSON form accepts comments and trailing commas: it is cleaned with
// github.com/tidwall/jsonc before being handed to encoding/json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/mergepom/internal/charset"
	"github.com/shinji-kodama/mergepom/internal/pom"
)

// Legacy log locations. They are only defaults; --stdout-log and
// --stderr-log (or the config file) override them.
const (
	DefaultStdoutLog = "/home/developer/env/mergepom_stdout.log"
	DefaultStderrLog = "/home/developer/env/mergepom_stderr.log"
)

// StreamLog is the log path value meaning "use the process stream".
const StreamLog = "-"

// SearchNames lists the config file names looked up in the working
// directory, in order.
var SearchNames = []string{".mergepom.yaml", ".mergepom.yml", ".mergepom.json"}

// Config holds every tunable of the merge driver.
type Config struct {
	// DriverName is the merge driver name registered in git config
	// (merge.<DriverName>.driver) and referenced from .gitattributes.
	DriverName string `yaml:"driverName" json:"driverName"`

	// TrunkBranch is the branch on which the merged-in version is kept.
	TrunkBranch string `yaml:"trunkBranch" json:"trunkBranch"`

	// PropertiesElement is the root child holding the properties.
	PropertiesElement string `yaml:"propertiesElement" json:"propertiesElement"`

	// VersionElement is the property holding the tracked version.
	VersionElement string `yaml:"versionElement" json:"versionElement"`

	// DefaultEncoding is assumed for descriptors without a declaration.
	DefaultEncoding string `yaml:"defaultEncoding" json:"defaultEncoding"`

	// FallbackEncoding decodes merge output that is not valid UTF-8.
	FallbackEncoding string `yaml:"fallbackEncoding" json:"fallbackEncoding"`

	// GitBinary is the git executable.
	GitBinary string `yaml:"gitBinary" json:"gitBinary"`

	// Log holds the redirect targets of the two output streams.
	Log LogConfig `yaml:"log" json:"log"`
}

// LogConfig holds the stdout/stderr redirect targets.
type LogConfig struct {
	Stdout string `yaml:"stdout" json:"stdout"`
	Stderr string `yaml:"stderr" json:"stderr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DriverName:        "pommerge",
		TrunkBranch:       "master",
		PropertiesElement: pom.DefaultPropertiesElement,
		VersionElement:    pom.DefaultVersionElement,
		DefaultEncoding:   charset.UTF8,
		FallbackEncoding:  charset.Latin1,
		GitBinary:         "git",
		Log: LogConfig{
			Stdout: DefaultStdoutLog,
			Stderr: DefaultStderrLog,
		},
	}
}

// KeepTrunkVersionKey returns the boolean git config key that keeps ours
// version even on the trunk branch.
func (c Config) KeepTrunkVersionKey() string {
	return "merge." + c.DriverName + ".keepmasterversion"
}

// PomOptions returns the extractor options derived from the config.
func (c Config) PomOptions() pom.Options {
	return pom.Options{
		PropertiesElement: c.PropertiesElement,
		VersionElement:    c.VersionElement,
	}
}

// Load reads the config file at path on top of the defaults. The format
// is chosen by extension: .json is JSONC, anything else is YAML. Fields
// missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		// Strip comments and trailing commas before parsing.
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Find returns the first config file from SearchNames present in dir, or
// "" when there is none.
func Find(dir string) (string, error) {
	for _, name := range SearchNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
	}
	return "", nil
}

// Resolve loads explicitPath if set, otherwise the first config file found
// in dir, otherwise the defaults.
func Resolve(explicitPath, dir string) (Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	found, err := Find(dir)
	if err != nil {
		return Default(), err
	}
	if found == "" {
		return Default(), nil
	}
	return Load(found)
}
