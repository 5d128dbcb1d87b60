package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/odvcencio/twig/pkg/object"
)

// Config stores repository-local settings from .twig/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
	Log  LogConfig  `toml:"log"`
}

// CoreConfig controls the object store.
type CoreConfig struct {
	// Compression is "none" (objects stored verbatim) or "zstd".
	Compression string `toml:"compression"`
	// CacheSize bounds the in-memory object read cache; 0 disables it.
	CacheSize int `toml:"cache_size"`
}

// UserConfig supplies the default commit author.
type UserConfig struct {
	Name string `toml:"name,omitempty"`
}

// LogConfig sets the default CLI log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the settings used when config.toml is missing or
// leaves a key out.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: string(object.CompressionNone),
			CacheSize:   object.DefaultCacheSize,
		},
		Log: LogConfig{Level: "warn"},
	}
}

func (c *Config) compression() (object.Compression, error) {
	comp, err := object.ParseCompression(c.Core.Compression)
	if err != nil {
		return "", fmt.Errorf("config: core.compression: %w", err)
	}
	return comp, nil
}

// ParseConfig decodes TOML config content on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.compression(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig reads .twig/config.toml. Missing config returns defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	f, err := r.fs.Open(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes .twig/config.toml and applies it to the
// open repository.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if _, err := cfg.compression(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}
	if err := r.writeFileAtomic(configFile, buf.Bytes(), ".config-tmp-"); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return r.applyConfig(cfg)
}

// writeFileAtomic writes data to name inside .twig/ via temp file + rename.
func (r *Repo) writeFileAtomic(name string, data []byte, tmpPrefix string) error {
	tmp, err := r.fs.TempFile(".", tmpPrefix)
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		r.fs.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := r.fs.Rename(tmpName, name); err != nil {
		r.fs.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
