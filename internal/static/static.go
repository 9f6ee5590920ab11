// Package static embeds the native messaging host files and installs them
// where browsers look for them
package static

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"text/template"

	"github.com/adrg/xdg"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/osutil"
)

// HostName identifies the native messaging host to the browser.
const HostName = "com.ayoisaiah.diary"

const (
	filesDir     = "files"
	wrapperName  = "diary-host"
	manifestTmpl = "host.json.tmpl"
	wrapperTmpl  = "diary-host.sh.tmpl"
)

var (
	errUnsupportedOS = &apperr.Error{
		Message: "automatic host installation is not supported on %s",
	}

	errUnknownBrowser = &apperr.Error{
		Message: "unknown browser %q: must be one of chrome, chromium, brave, or edge",
	}

	errMissingExtensionID = &apperr.Error{
		Message: "an extension ID is required to install the native messaging host",
	}
)

//go:embed files/*
var embeddedFiles embed.FS

var templates = template.Must(
	template.New("").ParseFS(embeddedFiles, filesDir+"/*.tmpl"),
)

// Browsers lists the supported browsers in display order.
var Browsers = []string{"chrome", "chromium", "brave", "edge"}

var browserDirs = map[string]map[string]string{
	"linux": {
		"chrome":   "google-chrome",
		"chromium": "chromium",
		"brave":    "BraveSoftware/Brave-Browser",
		"edge":     "microsoft-edge",
	},
	osutil.Darwin: {
		"chrome":   "Google/Chrome",
		"chromium": "Chromium",
		"brave":    "BraveSoftware/Brave-Browser",
		"edge":     "Microsoft Edge",
	},
}

// Manifest describes a native messaging host.
type Manifest struct {
	Name           string
	Description    string
	Path           string
	AllowedOrigins []string
}

// ManifestDir returns the directory in which browser looks for native
// messaging host manifests.
func ManifestDir(browser string) (string, error) {
	dirs, ok := browserDirs[runtime.GOOS]
	if !ok {
		return "", errUnsupportedOS.Fmt(runtime.GOOS)
	}

	dir, ok := dirs[browser]
	if !ok {
		return "", errUnknownBrowser.Fmt(browser)
	}

	return filepath.Join(xdg.ConfigHome, dir, "NativeMessagingHosts"), nil
}

// Render executes the named embedded template.
func Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer

	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Install writes a wrapper script for executable into dataDir and a host
// manifest allowing extensionID into each of manifestDirs. It returns the
// paths of the written files.
func Install(
	executable, extensionID, dataDir string,
	manifestDirs []string,
) ([]string, error) {
	if extensionID == "" {
		return nil, errMissingExtensionID
	}

	wrapper, err := Render(wrapperTmpl, map[string]string{
		"Executable": strconv.Quote(executable),
	})
	if err != nil {
		return nil, err
	}

	wrapperPath := filepath.Join(dataDir, wrapperName)

	if err := writeFile(wrapperPath, wrapper, 0o755); err != nil {
		return nil, err
	}

	manifest, err := Render(manifestTmpl, Manifest{
		Name:           HostName,
		Description:    "Digital Diary browsing activity tracker",
		Path:           wrapperPath,
		AllowedOrigins: []string{"chrome-extension://" + extensionID + "/"},
	})
	if err != nil {
		return nil, err
	}

	written := []string{wrapperPath}

	for _, dir := range manifestDirs {
		path := filepath.Join(dir, HostName+".json")

		if err := writeFile(path, manifest, 0o644); err != nil {
			return written, err
		}

		written = append(written, path)
	}

	return written, nil
}

func writeFile(path string, b []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return err
	}

	if err := os.WriteFile(path, b, perm); err != nil {
		return err
	}

	return os.Chmod(path, perm)
}
