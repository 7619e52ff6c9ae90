// Package config provides configuration loading and management for ontoc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/ontoc/model"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// ManifestVersion is the only manifest layout this build understands.
const ManifestVersion = 1

// Config represents the complete ontoc configuration
type Config struct {
	// BaseURI is the namespace of every compiled identifier
	BaseURI string `yaml:"base_uri"`
	// Prefix is the Turtle prefix bound to BaseURI (default: onto)
	Prefix string `yaml:"prefix"`
	// DefaultLang tags bare-string labels and comments (default: en)
	DefaultLang string `yaml:"default_lang"`
	// FilesDir holds the record sources; relative paths resolve against the config file
	FilesDir string `yaml:"files_dir"`
	// RequireEnglish demands an "en" entry in every label and comment
	RequireEnglish *bool `yaml:"require_english,omitempty"`
	// StrictFields rejects unknown JSON fields in records
	StrictFields *bool `yaml:"strict_fields,omitempty"`
	// Prefixes are extra namespace bindings usable in references
	Prefixes map[string]string `yaml:"prefixes,omitempty"`
	// ExtraScalarTypes extends the DatatypeProperty range set (prefixed names)
	ExtraScalarTypes []string `yaml:"extra_scalar_types,omitempty"`

	Ontology    OntologyConfig    `yaml:"ontology"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Output      OutputConfig      `yaml:"output"`
	Watch       WatchConfig       `yaml:"watch"`
	Manifest    Manifest          `yaml:"manifest"`

	// Dir is the directory of the last config file applied; empty for defaults
	Dir string `yaml:"-"`
}

// OntologyConfig describes the ontology header
type OntologyConfig struct {
	Label   string `yaml:"label,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// MeasurementConfig configures value/unit restriction synthesis
type MeasurementConfig struct {
	// BaseProperties declares the global hasValue/hasUnit properties
	BaseProperties *bool `yaml:"base_properties,omitempty"`
	// ValueProperty names the global value property (default: hasValue)
	ValueProperty string `yaml:"value_property,omitempty"`
	// UnitProperty names the global unit property (default: hasUnit)
	UnitProperty string `yaml:"unit_property,omitempty"`
}

// OutputConfig configures where the compiled ontology goes
type OutputConfig struct {
	// Path is the output file; "-" writes to stdout
	Path string `yaml:"path"`
	// Format is turtle, ntriples or jsonld
	Format string     `yaml:"format"`
	NATS   NATSConfig `yaml:"nats"`
}

// NATSConfig configures publishing the compiled ontology
type NATSConfig struct {
	// URL is the NATS server URL (empty = do not publish)
	URL string `yaml:"url,omitempty"`
	// Subject receives the serialized ontology
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is how long to wait for more changes before recompiling
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Manifest lists every record source the compiler reads. Sources not
// listed here are never loaded.
type Manifest struct {
	Version int `yaml:"version"`
	// Strict fails compilation when files_dir holds JSON files no source matches
	Strict  *bool         `yaml:"strict,omitempty"`
	Sources []SourceEntry `yaml:"sources"`
}

// SourceEntry registers one source file or glob pattern
type SourceEntry struct {
	// Path is relative to files_dir and may use ** globs
	Path string     `yaml:"path"`
	Kind model.Kind `yaml:"kind"`
	// DefaultParent is the parent of classes in this source that omit parent_class
	DefaultParent string `yaml:"default_parent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURI:        "https://localhost/myontology#",
		Prefix:         "onto",
		DefaultLang:    "en",
		FilesDir:       "files",
		RequireEnglish: boolPtr(true),
		StrictFields:   boolPtr(false),
		Prefixes: map[string]string{
			"eurio":    "http://data.europa.eu/s66#",
			"hpc_onto": "https://hpc-fair.github.io/ontology/#",
		},
		Measurement: MeasurementConfig{
			BaseProperties: boolPtr(true),
			ValueProperty:  "hasValue",
			UnitProperty:   "hasUnit",
		},
		Output: OutputConfig{
			Path:   "ontology.ttl",
			Format: "turtle",
			NATS: NATSConfig{
				Subject: "ontology.compiled",
			},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Manifest: Manifest{
			Version: ManifestVersion,
			Strict:  boolPtr(true),
		},
	}
}

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !owl.IsAbsoluteIRI(strings.TrimSpace(c.BaseURI)) {
		return fmt.Errorf("base_uri must be an absolute http(s) IRI, got %q", c.BaseURI)
	}
	if !prefixPattern.MatchString(c.Prefix) {
		return fmt.Errorf("prefix %q is not a valid prefix name", c.Prefix)
	}
	if c.DefaultLang == "" {
		return fmt.Errorf("default_lang is required")
	}
	if !model.ValidLanguageTag(c.DefaultLang) {
		return fmt.Errorf("default_lang: %q is not a valid language tag", c.DefaultLang)
	}
	if c.FilesDir == "" {
		return fmt.Errorf("files_dir is required")
	}
	builtin := owl.DefaultPrefixes()
	for prefix, ns := range c.Prefixes {
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("prefixes: %q is not a valid prefix name", prefix)
		}
		if prefix == c.Prefix {
			return fmt.Errorf("prefixes: %q is reserved for base_uri", prefix)
		}
		if bound, ok := builtin[prefix]; ok && bound != ns {
			return fmt.Errorf("prefixes: %q cannot be rebound", prefix)
		}
		if !owl.IsAbsoluteIRI(ns) {
			return fmt.Errorf("prefixes: %q must map to an absolute IRI", prefix)
		}
	}
	if c.Measurement.ValueProperty == "" || c.Measurement.UnitProperty == "" {
		return fmt.Errorf("measurement.value_property and measurement.unit_property are required")
	}
	if c.Measurement.ValueProperty == c.Measurement.UnitProperty {
		return fmt.Errorf("measurement.value_property and measurement.unit_property must differ (both %q)", c.Measurement.ValueProperty)
	}
	switch c.Output.Format {
	case "turtle", "ntriples", "jsonld":
	default:
		return fmt.Errorf("unsupported output.format: %s (valid: jsonld, ntriples, turtle)", c.Output.Format)
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Output.NATS.URL != "" && c.Output.NATS.Subject == "" {
		return fmt.Errorf("output.nats.subject is required when output.nats.url is set")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return c.Manifest.Validate()
}

// Validate checks the manifest layout
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("manifest.version %d is not supported (want %d)", m.Version, ManifestVersion)
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("manifest.sources must list at least one source")
	}
	seen := make(map[string]bool, len(m.Sources))
	for i, s := range m.Sources {
		if s.Path == "" {
			return fmt.Errorf("manifest.sources[%d].path is required", i)
		}
		if !s.Kind.Valid() {
			return fmt.Errorf("manifest.sources[%d].kind %q is not one of classes, properties, instances, restrictions", i, s.Kind)
		}
		if s.DefaultParent != "" && s.Kind != model.KindClasses {
			return fmt.Errorf("manifest.sources[%d].default_parent only applies to classes", i)
		}
		if seen[s.Path] {
			return fmt.Errorf("manifest.sources[%d].path %q is listed twice", i, s.Path)
		}
		seen[s.Path] = true
	}
	return nil
}

// NormalizedBaseURI returns BaseURI trimmed and ending in "#"
func (c *Config) NormalizedBaseURI() string {
	base := strings.TrimSpace(c.BaseURI)
	if !strings.HasSuffix(base, "#") {
		base += "#"
	}
	return base
}

// ResolveFilesDir returns FilesDir, joined to Dir when relative
func (c *Config) ResolveFilesDir() string {
	return c.anchor(c.FilesDir)
}

// ResolveOutputPath returns Output.Path, joined to Dir when relative. The
// stdout marker "-" is returned unchanged.
func (c *Config) ResolveOutputPath() string {
	return c.anchor(c.Output.Path)
}

// anchor joins a relative path to Dir. "-" and absolute paths are kept.
func (c *Config) anchor(p string) string {
	if p == "-" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// PrefixMap returns the W3C bindings plus the configured ones and the base prefix
func (c *Config) PrefixMap() owl.PrefixMap {
	pm := owl.DefaultPrefixes()
	for prefix, ns := range c.Prefixes {
		pm.Bind(prefix, ns)
	}
	pm.Bind(c.Prefix, c.NormalizedBaseURI())
	return pm
}

// RequireEnglishEnabled reports the effective require_english setting
func (c *Config) RequireEnglishEnabled() bool { return boolValue(c.RequireEnglish, true) }

// StrictFieldsEnabled reports the effective strict_fields setting
func (c *Config) StrictFieldsEnabled() bool { return boolValue(c.StrictFields, false) }

// BasePropertiesEnabled reports the effective measurement.base_properties setting
func (c *Config) BasePropertiesEnabled() bool { return boolValue(c.Measurement.BaseProperties, true) }

// StrictEnabled reports the effective manifest.strict setting
func (m *Manifest) StrictEnabled() bool { return boolValue(m.Strict, true) }

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeFile unmarshals path into config and records its directory
func decodeFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		config.Dir = abs
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for set values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.BaseURI != "" {
		c.BaseURI = other.BaseURI
	}
	if other.Prefix != "" {
		c.Prefix = other.Prefix
	}
	if other.DefaultLang != "" {
		c.DefaultLang = other.DefaultLang
	}
	// Relative paths are anchored to the layer that set them, so a later
	// layer's Dir does not move them.
	if other.FilesDir != "" {
		c.FilesDir = other.anchor(other.FilesDir)
	}
	if other.Dir != "" {
		c.Dir = other.Dir
	}
	if other.RequireEnglish != nil {
		c.RequireEnglish = boolPtr(*other.RequireEnglish)
	}
	if other.StrictFields != nil {
		c.StrictFields = boolPtr(*other.StrictFields)
	}
	if len(other.Prefixes) > 0 {
		if c.Prefixes == nil {
			c.Prefixes = make(map[string]string, len(other.Prefixes))
		}
		for prefix, ns := range other.Prefixes {
			c.Prefixes[prefix] = ns
		}
	}
	if len(other.ExtraScalarTypes) > 0 {
		c.ExtraScalarTypes = other.ExtraScalarTypes
	}

	// Ontology
	if other.Ontology.Label != "" {
		c.Ontology.Label = other.Ontology.Label
	}
	if other.Ontology.Version != "" {
		c.Ontology.Version = other.Ontology.Version
	}

	// Measurement
	if other.Measurement.BaseProperties != nil {
		c.Measurement.BaseProperties = boolPtr(*other.Measurement.BaseProperties)
	}
	if other.Measurement.ValueProperty != "" {
		c.Measurement.ValueProperty = other.Measurement.ValueProperty
	}
	if other.Measurement.UnitProperty != "" {
		c.Measurement.UnitProperty = other.Measurement.UnitProperty
	}

	// Output
	if other.Output.Path != "" {
		c.Output.Path = other.anchor(other.Output.Path)
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.NATS.URL != "" {
		c.Output.NATS.URL = other.Output.NATS.URL
	}
	if other.Output.NATS.Subject != "" {
		c.Output.NATS.Subject = other.Output.NATS.Subject
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Manifest: sources are replaced as a whole, never interleaved
	if other.Manifest.Version != 0 {
		c.Manifest.Version = other.Manifest.Version
	}
	if other.Manifest.Strict != nil {
		c.Manifest.Strict = boolPtr(*other.Manifest.Strict)
	}
	if len(other.Manifest.Sources) > 0 {
		c.Manifest.Sources = append([]SourceEntry(nil), other.Manifest.Sources...)
	}
}

func boolPtr(v bool) *bool { return &v }

func boolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
