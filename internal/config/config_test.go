package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile is a small helper that writes content into dir/name.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestDefault verifies the built-in values match the legacy driver.
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "pommerge", cfg.DriverName)
	assert.Equal(t, "master", cfg.TrunkBranch)
	assert.Equal(t, "properties", cfg.PropertiesElement)
	assert.Equal(t, "commonAppVersion", cfg.VersionElement)
	assert.Equal(t, "utf-8", cfg.DefaultEncoding)
	assert.Equal(t, "iso-8859-1", cfg.FallbackEncoding)
	assert.Equal(t, DefaultStdoutLog, cfg.Log.Stdout)
	assert.Equal(t, DefaultStderrLog, cfg.Log.Stderr)
	assert.Equal(t, "merge.pommerge.keepmasterversion", cfg.KeepTrunkVersionKey())
	assert.Empty(t, cfg.Validate())
	assert.NoError(t, cfg.Err())
}

// TestLoad_YAML verifies that a partial YAML file overrides only the keys
// it sets.
func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".mergepom.yaml", `
trunkBranch: main
versionElement: appVersion
log:
  stdout: "-"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.TrunkBranch)
	assert.Equal(t, "appVersion", cfg.VersionElement)
	assert.Equal(t, StreamLog, cfg.Log.Stdout)

	// Untouched keys keep their defaults.
	assert.Equal(t, "properties", cfg.PropertiesElement)
	assert.Equal(t, DefaultStderrLog, cfg.Log.Stderr)
	assert.Equal(t, "appVersion", cfg.PomOptions().VersionElement)
}

// TestLoad_JSONC verifies that comments and trailing commas are accepted
// in the JSON form.
func TestLoad_JSONC(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".mergepom.json", `{
		// keep the develop branch as trunk
		"trunkBranch": "develop",
		"driverName": "pomversion", /* custom driver */
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "develop", cfg.TrunkBranch)
	assert.Equal(t, "merge.pomversion.keepmasterversion", cfg.KeepTrunkVersionKey())
}

// TestLoad_Errors covers unreadable and unparsable files.
func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.yaml", "trunkBranch: [unclosed")
	_, err = Load(bad)
	assert.Error(t, err)

	badJSON := writeFile(t, t.TempDir(), "bad.json", `{"trunkBranch": 42}`)
	_, err = Load(badJSON)
	assert.Error(t, err)
}

// TestResolve verifies lookup order: explicit path, then search names,
// then defaults.
func TestResolve(t *testing.T) {
	t.Run("defaults when nothing found", func(t *testing.T) {
		cfg, err := Resolve("", t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("yaml preferred over json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".mergepom.json", `{"trunkBranch": "from-json"}`)
		writeFile(t, dir, ".mergepom.yml", `trunkBranch: from-yaml`)

		cfg, err := Resolve("", dir)
		require.NoError(t, err)
		assert.Equal(t, "from-yaml", cfg.TrunkBranch)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".mergepom.yaml", `trunkBranch: found`)
		explicit := writeFile(t, t.TempDir(), "custom.json", `{"trunkBranch": "explicit"}`)

		cfg, err := Resolve(explicit, dir)
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.TrunkBranch)
	})
}

// TestValidate reports every invalid field.
func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TrunkBranch = " "
	cfg.VersionElement = "common<App"
	cfg.PropertiesElement = ""
	cfg.FallbackEncoding = "bogus-9"
	cfg.GitBinary = ""

	problems := cfg.Validate()
	fields := make([]string, len(problems))
	for i, p := range problems {
		fields[i] = p.Field
	}

	assert.ElementsMatch(t, []string{
		"trunkBranch", "versionElement", "propertiesElement", "fallbackEncoding", "gitBinary",
	}, fields)
	assert.Error(t, cfg.Err())
	assert.Contains(t, cfg.Err().Error(), "fallbackEncoding")
}
