// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// Paths holds all application path configurations.
type Paths struct {
	configDir        string
	configFileName   string
	boltFileName     string
	sqliteFileName   string
	logFileName      string
	envFileName      string
	categoryFileName string

	// Computed absolute paths
	configFilePath   string
	boltFilePath     string
	sqliteFilePath   string
	logFilePath      string
	envFilePath      string
	categoryFilePath string
	dataDir          string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			configDir:        "diary",
			configFileName:   "config.yml",
			boltFileName:     "diary.db",
			sqliteFileName:   "diary.sqlite",
			logFileName:      "diary.log",
			envFileName:      ".env",
			categoryFileName: "categories.toml",
		}

		paths.applyEnvironmentOverrides()
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func Dir() string {
	return Must().configDir
}

func ConfigFilePath() string {
	return Must().configFilePath
}

// DBFilePath returns the database location for the storage driver.
func DBFilePath(driver string) string {
	if driver == "sqlite" {
		return Must().sqliteFilePath
	}

	return Must().boltFilePath
}

func LogFilePath() string {
	return Must().logFilePath
}

// EnvFilePath is an optional dotenv file that keeps API keys out of the
// config file.
func EnvFilePath() string {
	return Must().envFilePath
}

// CategoryFilePath is an optional TOML file of category overrides.
func CategoryFilePath() string {
	return Must().categoryFilePath
}

func DataDir() string {
	return Must().dataDir
}

func (p *Paths) applyEnvironmentOverrides() {
	diaryEnv := strings.TrimSpace(os.Getenv("DIARY_ENV"))
	if diaryEnv != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", diaryEnv)
		p.boltFileName = fmt.Sprintf("diary_%s.db", diaryEnv)
		p.sqliteFileName = fmt.Sprintf("diary_%s.sqlite", diaryEnv)
		p.logFileName = fmt.Sprintf("diary_%s.log", diaryEnv)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(p.configFilePath)

	p.envFilePath = filepath.Join(configDir, p.envFileName)
	p.categoryFilePath = filepath.Join(configDir, p.categoryFileName)

	p.dataDir, err = xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	p.boltFilePath = filepath.Join(p.dataDir, p.boltFileName)
	p.sqliteFilePath = filepath.Join(p.dataDir, p.sqliteFileName)
	p.logFilePath = filepath.Join(p.dataDir, "log", p.logFileName)

	return nil
}
