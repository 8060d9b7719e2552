// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is looked up in the working directory when no explicit config
// path is given.
const FileName = ".fstree.toml"

// ErrConfigParse wraps every failure to read or decode a config file.
var ErrConfigParse = errors.New("config parse error")

// Display holds the [display] section.
type Display struct {
	ShowEmptyFolders *bool `toml:"show_empty_folders"`
	MaxDepth         *int  `toml:"max_depth"`
	ShowSize         *bool `toml:"show_size"`
}

// Filters holds the [filters] section.
type Filters struct {
	Exclude      []string `toml:"exclude"`
	Include      []string `toml:"include"`
	ShowHidden   *bool    `toml:"show_hidden"`
	UseGitignore *bool    `toml:"use_gitignore"`
	IgnoreFile   *string  `toml:"ignore_file"` // gitignore-syntax patterns, relative to the config file
}

// Copy holds the [copy] section.
type Copy struct {
	PreserveTimestamps *bool `toml:"preserve_timestamps"`
	Overwrite          *bool `toml:"overwrite"`
}

// Config mirrors the config file. Pointer fields tell "unset" apart from an
// explicit false or zero.
type Config struct {
	Display Display `toml:"display"`
	Filters Filters `toml:"filters"`
	Copy    Copy    `toml:"copy"`
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// Default is used for every key the file leaves unset.
var Default = Config{
	Display: Display{
		ShowEmptyFolders: boolPtr(false),
		MaxDepth:         intPtr(0),
		ShowSize:         boolPtr(false),
	},
	Filters: Filters{
		Exclude:      []string{},
		Include:      []string{},
		ShowHidden:   boolPtr(false),
		UseGitignore: boolPtr(false),
		IgnoreFile:   strPtr(""),
	},
	Copy: Copy{
		PreserveTimestamps: boolPtr(false),
		Overwrite:          boolPtr(false),
	},
}

// Load reads customPath, or FileName in the working directory when
// customPath is empty. A missing default file is not an error; a missing
// custom file is.
func Load(customPath string) (Config, error) {
	isCustomPath := customPath != ""
	configFile := customPath
	if !isCustomPath {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Warn("Could not determine working directory. Using default settings only.", "error", err)
			return Default, nil
		}
		configFile = filepath.Join(cwd, FileName)
	}

	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return Default, fmt.Errorf("%w: invalid config path '%s': %v", ErrConfigParse, configFile, err)
	}
	configFile = absPath

	slog.Debug("Reading configuration file", "path", configFile)
	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !isCustomPath {
			slog.Debug("No config file found, using default settings.", "path", configFile)
			return Default, nil
		}
		return Default, fmt.Errorf("%w: error reading config file '%s': %w", ErrConfigParse, configFile, err)
	}
	return Parse(configFile, content)
}

// Parse decodes content and fills unset keys from Default.
func Parse(source string, content []byte) (Config, error) {
	if len(content) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", source)
		return Default, nil
	}

	var cfg Config
	meta, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return Default, fmt.Errorf("%w: error decoding TOML from '%s': %w", ErrConfigParse, source, err)
	}
	if len(meta.Undecoded()) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", source, "keys", meta.Undecoded())
	}

	if cfg.Display.MaxDepth != nil && *cfg.Display.MaxDepth < 0 {
		return Default, fmt.Errorf("%w: display.max_depth must not be negative, got %d", ErrConfigParse, *cfg.Display.MaxDepth)
	}
	cfg.fillDefaults(source)

	slog.Debug("Configuration loaded successfully.",
		"source", source,
		"show_empty_folders", *cfg.Display.ShowEmptyFolders,
		"max_depth", *cfg.Display.MaxDepth,
		"exclude", cfg.Filters.Exclude,
		"include", cfg.Filters.Include,
		"use_gitignore", *cfg.Filters.UseGitignore,
		"ignore_file", *cfg.Filters.IgnoreFile,
		"preserve_timestamps", *cfg.Copy.PreserveTimestamps,
		"overwrite", *cfg.Copy.Overwrite,
	)
	return cfg, nil
}

func (c *Config) fillDefaults(source string) {
	fill := func(dst **bool, def *bool) {
		if *dst == nil {
			*dst = def
		}
	}
	fill(&c.Display.ShowEmptyFolders, Default.Display.ShowEmptyFolders)
	fill(&c.Display.ShowSize, Default.Display.ShowSize)
	fill(&c.Filters.ShowHidden, Default.Filters.ShowHidden)
	fill(&c.Filters.UseGitignore, Default.Filters.UseGitignore)
	fill(&c.Copy.PreserveTimestamps, Default.Copy.PreserveTimestamps)
	fill(&c.Copy.Overwrite, Default.Copy.Overwrite)
	if c.Filters.IgnoreFile == nil {
		c.Filters.IgnoreFile = Default.Filters.IgnoreFile
	} else if p := *c.Filters.IgnoreFile; p != "" && !filepath.IsAbs(p) && source != "" {
		c.Filters.IgnoreFile = strPtr(filepath.Join(filepath.Dir(source), p))
	}
	if c.Display.MaxDepth == nil {
		c.Display.MaxDepth = Default.Display.MaxDepth
	}
	if c.Filters.Exclude == nil {
		c.Filters.Exclude = []string{}
	}
	if c.Filters.Include == nil {
		c.Filters.Include = []string{}
	}
}
