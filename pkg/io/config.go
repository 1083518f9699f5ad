package io

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/layerspec/pkg/errors"
)

// Config is a decoded plugin configuration file.
type Config struct {
	// Plugins lists the plugins to run, in order. Empty means the runner's
	// default.
	Plugins []string

	md     toml.MetaData
	tables map[string]toml.Primitive
}

type configFile struct {
	Pipeline struct {
		Plugins []string `toml:"plugins"`
	} `toml:"pipeline"`
	Plugins map[string]toml.Primitive `toml:"plugins"`
}

// ReadConfig decodes a TOML plugin configuration from r.
func ReadConfig(r io.Reader) (*Config, error) {
	var raw configFile
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	for _, name := range raw.Pipeline.Plugins {
		if err := errors.ValidateName("plugin", name); err != nil {
			return nil, err
		}
	}
	return &Config{Plugins: raw.Pipeline.Plugins, md: md, tables: raw.Plugins}, nil
}

// ImportConfig reads a TOML plugin configuration file at path.
func ImportConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c, err := ReadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Tables returns the names of the plugin tables present, sorted.
func (c *Config) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decoder returns a function decoding the named plugin table into a value.
// A missing table decodes to nothing, leaving the value's defaults.
func (c *Config) Decoder(name string) func(v any) error {
	prim, ok := c.tables[name]
	if !ok {
		return func(any) error { return nil }
	}
	return func(v any) error {
		if err := c.md.PrimitiveDecode(prim, v); err != nil {
			return fmt.Errorf("plugins.%s: %w", name, err)
		}
		return nil
	}
}

// Decoders returns a decoder for every plugin table.
func (c *Config) Decoders() map[string]func(v any) error {
	out := make(map[string]func(v any) error, len(c.tables))
	for name := range c.tables {
		out[name] = c.Decoder(name)
	}
	return out
}

// Undecoded returns the keys no decoder has consumed yet, for warnings about
// misspelled settings. Call it after the plugins were created.
func (c *Config) Undecoded() []string {
	var keys []string
	for _, k := range c.md.Undecoded() {
		keys = append(keys, k.String())
	}
	return keys
}
