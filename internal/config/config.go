// Package config loads server settings from an optional JSON file in the
// user's XDG config directories.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const appName = "chessrules"

var (
	cfgFile = appName + "/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

// Duration reads and writes as a string such as "1s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type ServerConfig struct {
	ListenAddr      string   `json:"listen_addr"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ReadBufferSize  int      `json:"ws_read_buffer"`
	WriteBufferSize int      `json:"ws_write_buffer"`
}

type MatchmakingConfig struct {
	Interval Duration `json:"interval"`
}

// GamesConfig controls how long games are kept once finished or idle.
type GamesConfig struct {
	SweepInterval Duration `json:"sweep_interval"`
	FinishedTTL   Duration `json:"finished_ttl"`
	IdleTTL       Duration `json:"idle_ttl"`
}

type StorageConfig struct {
	// DatabaseDir is where BadgerDB keeps its files. Empty means in-memory.
	DatabaseDir string `json:"database_dir"`
	InMemory    bool   `json:"in_memory"`
}

type Config struct {
	Server      ServerConfig      `json:"server"`
	Matchmaking MatchmakingConfig `json:"matchmaking"`
	Games       GamesConfig       `json:"games"`
	Storage     StorageConfig     `json:"storage"`
}

// InitConfig returns DefaultConfig overlaid with the config file, if one
// exists in any XDG config directory.
func InitConfig() (*Config, error) {
	config := DefaultConfig()
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, config); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads a config file from an explicit path.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if err := readCfgFile(path, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return &InvalidConfig{"listen_addr must not be empty"}
	}
	if c.Server.ReadBufferSize <= 0 || c.Server.WriteBufferSize <= 0 {
		return &InvalidConfig{"WebSocket buffer sizes must be positive"}
	}
	if c.Matchmaking.Interval.Duration <= 0 {
		return &InvalidConfig{"matchmaking interval must be positive"}
	}
	if c.Games.SweepInterval.Duration <= 0 || c.Games.FinishedTTL.Duration <= 0 || c.Games.IdleTTL.Duration <= 0 {
		return &InvalidConfig{"games durations must be positive"}
	}
	if !c.Storage.InMemory && c.Storage.DatabaseDir == "" {
		return &InvalidConfig{"database_dir is required unless in_memory is set"}
	}
	return nil
}

// DatabaseDir is the directory to open, or "" for an in-memory database.
func (c *Config) DatabaseDir() string {
	if c.Storage.InMemory {
		return ""
	}
	return c.Storage.DatabaseDir
}

// Save writes the config to the user's XDG config directory and returns
// the path written.
func (c *Config) Save() (string, error) {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return "", err
	}
	return absPath, c.SaveTo(absPath)
}

// SaveTo writes the config to filePath.
func (c *Config) SaveTo(filePath string) error {
	return saveCfgFile(filePath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":3000",
			AllowedOrigins:  []string{"http://localhost:5173"},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Matchmaking: MatchmakingConfig{
			Interval: Duration{time.Second},
		},
		Games: GamesConfig{
			SweepInterval: Duration{time.Minute},
			FinishedTTL:   Duration{10 * time.Minute},
			IdleTTL:       Duration{24 * time.Hour},
		},
		Storage: StorageConfig{
			DatabaseDir: filepath.Join(xdg.DataHome, appName, "db"),
		},
	}
}
