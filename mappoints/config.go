package mappoints

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lewtec/mappoints/internal/logger"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvDatabase = "MAPPOINTS_DATABASE"
	EnvDataDir  = "MAPPOINTS_DATA_DIR"
	EnvImages   = "MAPPOINTS_IMAGES_DIR"
	EnvBoundary = "MAPPOINTS_BOUNDARY"
	EnvListen   = "MAPPOINTS_LISTEN"
)

type Config struct {
	// Database is the SQLite file, relative to DataDir unless absolute
	Database string `yaml:"database"`
	// DataDir is the root that relative image paths are stored against
	DataDir string `yaml:"data_dir"`
	// ImagesDir is where copied point images are kept, relative to DataDir unless absolute
	ImagesDir string `yaml:"images_dir"`
	// Boundary is an optional ESRI rings JSON file used for the outside mask
	Boundary string `yaml:"boundary,omitempty"`
	// OSMFile is handed through to map front ends untouched
	OSMFile string        `yaml:"osm_file,omitempty"`
	Listen  string        `yaml:"listen"`
	Log     logger.Logger `yaml:"log"`
}

func DefaultConfig() *Config {
	ret := &Config{}
	ret.applyDefaults()
	return ret
}

func LoadConfig(filename string) (*Config, error) {
	var ret Config
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, &ret)
	if err != nil {
		return nil, fmt.Errorf("while parsing config '%s': %w", filename, err)
	}
	ret.applyDefaults()
	return &ret, nil
}

// Save writes the config as YAML to filename.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ApplyEnv overrides fields with the MAPPOINTS_* environment variables that are set.
func (c *Config) ApplyEnv() {
	for env, field := range map[string]*string{
		EnvDatabase: &c.Database,
		EnvDataDir:  &c.DataDir,
		EnvImages:   &c.ImagesDir,
		EnvBoundary: &c.Boundary,
		EnvListen:   &c.Listen,
	} {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			*field = value
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "map_points.db"
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "images"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Log.Format == "" {
		c.Log.Format = logger.FormatAuto
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Resolve returns p joined to DataDir unless it is already absolute.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func (c *Config) DatabasePath() string {
	return c.Resolve(c.Database)
}

func (c *Config) ImagesPath() string {
	return c.Resolve(c.ImagesDir)
}

// BoundaryPath is empty when no boundary is configured.
func (c *Config) BoundaryPath() string {
	if c.Boundary == "" {
		return ""
	}
	return c.Resolve(c.Boundary)
}
