// Package config holds the static VisionParse configuration: supported
// document types and their file extensions, available output formats, and the
// page/size limits enforced before any conversion runs.
//
// The Config value is built once at process start and never mutated afterwards.
// Two numeric limits may be overridden via environment (MAX_PAGES,
// MAX_FILE_SIZE); everything else comes from defaults or an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DocumentType identifies a selectable input document family.
type DocumentType string

const (
	TypePDF      DocumentType = "pdf"
	TypeDocx     DocumentType = "docx"
	TypeXLSX     DocumentType = "xlsx"
	TypeHTML     DocumentType = "html"
	TypePPTX     DocumentType = "pptx"
	TypeImage    DocumentType = "image"
	TypeMarkdown DocumentType = "markdown"
	TypeAsciiDoc DocumentType = "asciidoc"
	TypeCSV      DocumentType = "csv"
)

// Output format labels, in the order they are offered to the user.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Config is the full service configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	// SupportedTypes maps each document type to its allowed file extensions
	// (lowercase, without the leading dot).
	SupportedTypes map[DocumentType][]string `yaml:"supported_types"`

	// OutputFormats lists the selectable output representations, in UI order.
	OutputFormats []string `yaml:"output_formats"`

	// MaxPages caps the page count for formats where it is cheaply knowable
	// before conversion (PDF). Overridable via MAX_PAGES.
	MaxPages int `yaml:"max_pages"`

	// MaxFileSize caps the upload size in bytes. Overridable via MAX_FILE_SIZE.
	MaxFileSize int64 `yaml:"max_file_size"`

	// DefaultImageScale is the initial image resolution multiplier offered by
	// the UI for formats that rasterize (PDF, images).
	DefaultImageScale float64 `yaml:"default_image_scale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8090",
		LogLevel: "info",
		SupportedTypes: map[DocumentType][]string{
			TypePDF:      {"pdf"},
			TypeDocx:     {"docx"},
			TypeXLSX:     {"xlsx"},
			TypeHTML:     {"html", "htm"},
			TypePPTX:     {"pptx"},
			TypeImage:    {"png", "jpg", "jpeg", "tiff", "bmp", "webp"},
			TypeMarkdown: {"md", "markdown"},
			TypeAsciiDoc: {"adoc", "asciidoc"},
			TypeCSV:      {"csv"},
		},
		OutputFormats:     []string{FormatMarkdown, FormatJSON, FormatYAML},
		MaxPages:          100,
		MaxFileSize:       20 * 1024 * 1024,
		DefaultImageScale: 2.0,
	}
}

// LoadFile reads a YAML config file and merges it over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// FromEnv applies the environment overrides to cfg. A present but non-numeric
// value is a configuration error: the caller is expected to refuse to start.
func (c *Config) FromEnv() error {
	if v := os.Getenv("MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_PAGES=%q is not a number", v)
		}
		c.MaxPages = n
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: MAX_FILE_SIZE=%q is not a number", v)
		}
		c.MaxFileSize = n
	}
	return c.Validate()
}

// Validate checks that limits are sane and the format list is non-empty.
func (c *Config) Validate() error {
	if c.MaxPages <= 0 {
		return fmt.Errorf("config: max_pages must be > 0")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("config: max_file_size must be > 0")
	}
	if len(c.OutputFormats) == 0 {
		return fmt.Errorf("config: output_formats must not be empty")
	}
	if len(c.SupportedTypes) == 0 {
		return fmt.Errorf("config: supported_types must not be empty")
	}
	return nil
}

// ExtensionAllowed reports whether ext (lowercase, no dot) is a valid
// extension for the given document type.
func (c *Config) ExtensionAllowed(t DocumentType, ext string) bool {
	for _, e := range c.SupportedTypes[t] {
		if e == ext {
			return true
		}
	}
	return false
}

// FormatAllowed reports whether format is one of the configured output formats.
func (c *Config) FormatAllowed(format string) bool {
	for _, f := range c.OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// SupportsImageScale reports whether the image-resolution control applies to
// the given document type. Only rasterizing formats use it.
func (c *Config) SupportsImageScale(t DocumentType) bool {
	return t == TypePDF || t == TypeImage
}

// Types returns all configured document types in a stable order.
func (c *Config) Types() []DocumentType {
	order := []DocumentType{
		TypePDF, TypeDocx, TypeXLSX, TypeHTML, TypePPTX,
		TypeImage, TypeMarkdown, TypeAsciiDoc, TypeCSV,
	}
	out := make([]DocumentType, 0, len(c.SupportedTypes))
	for _, t := range order {
		if _, ok := c.SupportedTypes[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
