package compiler

import (
	"fmt"
	"strings"

	"github.com/c360studio/ontoc/config"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// Options configure a compilation.
type Options struct {
	// BaseURI is the ontology namespace, ending in "#".
	BaseURI string
	// Prefixes are the bindings external references may use. The base
	// namespace should be bound too so it is compacted on output.
	Prefixes owl.PrefixMap
	// Scalars is the set of DatatypeProperty ranges.
	Scalars owl.ScalarSet

	OntologyLabel   string
	OntologyVersion string

	// BaseProperties declares the global value and unit properties.
	BaseProperties bool
	ValueProperty  string
	UnitProperty   string
}

// DefaultOptions returns options for base with the W3C prefixes only.
func DefaultOptions(base string) Options {
	if !strings.HasSuffix(base, "#") {
		base += "#"
	}
	pm := owl.DefaultPrefixes()
	pm.Bind("onto", base)
	return Options{
		BaseURI:        base,
		Prefixes:       pm,
		Scalars:        owl.DefaultScalars(),
		BaseProperties: true,
		ValueProperty:  "hasValue",
		UnitProperty:   "hasUnit",
	}
}

// OptionsFromConfig derives compile options from cfg. Extra scalar types
// must use a bound prefix.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	pm := cfg.PrefixMap()
	scalars := owl.DefaultScalars()
	for _, tag := range cfg.ExtraScalarTypes {
		if !scalars.Add(tag, pm) {
			return Options{}, fmt.Errorf("extra_scalar_types: %q is not a prefixed name with a known prefix", tag)
		}
	}
	return Options{
		BaseURI:         cfg.NormalizedBaseURI(),
		Prefixes:        pm,
		Scalars:         scalars,
		OntologyLabel:   cfg.Ontology.Label,
		OntologyVersion: cfg.Ontology.Version,
		BaseProperties:  cfg.BasePropertiesEnabled(),
		ValueProperty:   cfg.Measurement.ValueProperty,
		UnitProperty:    cfg.Measurement.UnitProperty,
	}, nil
}

// OntologyIRI is the ontology's own IRI: the base without its "#".
func (o Options) OntologyIRI() string {
	return strings.TrimSuffix(o.BaseURI, "#")
}

func (o Options) withDefaults() Options {
	if o.Prefixes == nil {
		o.Prefixes = owl.DefaultPrefixes()
	}
	if o.Scalars == nil {
		o.Scalars = owl.DefaultScalars()
	}
	if o.ValueProperty == "" {
		o.ValueProperty = "hasValue"
	}
	if o.UnitProperty == "" {
		o.UnitProperty = "hasUnit"
	}
	return o
}
