package static

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	chrome := filepath.Join(root, "google-chrome", "NativeMessagingHosts")
	brave := filepath.Join(root, "brave", "NativeMessagingHosts")

	written, err := Install("/usr/local/bin/diary", "abcdef", dataDir, []string{chrome, brave})
	require.NoError(t, err)
	require.Len(t, written, 3)

	wrapper, err := os.ReadFile(filepath.Join(dataDir, wrapperName))
	require.NoError(t, err)
	assert.Contains(t, string(wrapper), `exec "/usr/local/bin/diary" host`)

	info, err := os.Stat(filepath.Join(dataDir, wrapperName))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "wrapper must be executable")

	b, err := os.ReadFile(filepath.Join(brave, HostName+".json"))
	require.NoError(t, err)

	var manifest struct {
		Name           string   `json:"name"`
		Path           string   `json:"path"`
		Type           string   `json:"type"`
		AllowedOrigins []string `json:"allowed_origins"`
	}

	require.NoError(t, json.Unmarshal(b, &manifest))

	assert.Equal(t, HostName, manifest.Name)
	assert.Equal(t, "stdio", manifest.Type)
	assert.Equal(t, filepath.Join(dataDir, wrapperName), manifest.Path)
	assert.Equal(t, []string{"chrome-extension://abcdef/"}, manifest.AllowedOrigins)
}

func TestInstallRequiresExtensionID(t *testing.T) {
	_, err := Install("diary", "", t.TempDir(), nil)
	assert.ErrorIs(t, err, errMissingExtensionID)
}

func TestManifestDirUnknownBrowser(t *testing.T) {
	_, err := ManifestDir("netscape")
	assert.Error(t, err)
}
