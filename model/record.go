package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the record kind held by a source file.
type Kind string

// Record kinds.
const (
	KindClasses      Kind = "classes"
	KindProperties   Kind = "properties"
	KindInstances    Kind = "instances"
	KindRestrictions Kind = "restrictions"
)

// Kinds lists every record kind in pipeline order.
var Kinds = []Kind{KindClasses, KindProperties, KindInstances, KindRestrictions}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindClasses, KindProperties, KindInstances, KindRestrictions:
		return true
	}
	return false
}

// Singular returns the kind's noun for one record, as used in messages.
func (k Kind) Singular() string {
	switch k {
	case KindClasses:
		return "class"
	case KindProperties:
		return "property"
	case KindInstances:
		return "instance"
	case KindRestrictions:
		return "restriction"
	}
	return string(k)
}

// PropertyType is the OWL kind of a property.
type PropertyType string

// Supported property types.
const (
	ObjectProperty   PropertyType = "ObjectProperty"
	DatatypeProperty PropertyType = "DatatypeProperty"
)

// ValidationOptions tune the per-record checks.
type ValidationOptions struct {
	// RequireEnglish demands an "en" entry in every label and comment.
	RequireEnglish bool
}

// ClassRecord declares a class.
type ClassRecord struct {
	ID           string             `json:"id"`
	ParentClass  string             `json:"parent_class,omitempty"`
	PrefLabel    LangMap            `json:"pref_label"`
	Comment      LangMap            `json:"comment"`
	LinkHTML     string             `json:"link_html,omitempty"`
	Equivalent   string             `json:"equivalent,omitempty"`
	OneOf        []string           `json:"one_of,omitempty"`
	Restrictions []ClassRestriction `json:"restrictions,omitempty"`
	Cardinality  *Cardinality       `json:"cardinality,omitempty"`

	// Source is the file the record was read from.
	Source string `json:"-"`

	// ParentFromDefault is set when ParentClass came from the source's
	// default parent rather than the record itself.
	ParentFromDefault bool `json:"-"`
}

// ClassRestriction is an anonymous superclass restricting one property.
// Exactly one of SomeValuesFrom, AllValuesFrom and HasValue is set.
type ClassRestriction struct {
	Property       string `json:"property"`
	SomeValuesFrom string `json:"some_values_from,omitempty"`
	AllValuesFrom  string `json:"all_values_from,omitempty"`
	HasValue       string `json:"has_value,omitempty"`
}

// Cardinality constrains how many values of Property a member carries.
// Either Exactly, or at least one of Min and Max, is set. OnClass makes
// the restriction qualified.
type Cardinality struct {
	Property string `json:"property"`
	OnClass  string `json:"on_class,omitempty"`
	Exactly  *int   `json:"exactly,omitempty"`
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
}

// Validate checks required fields and shapes.
func (c *ClassRecord) Validate(opts ValidationOptions) error {
	if reason := checkID(c.ID); reason != "" {
		return c.malformed("id", reason)
	}
	if reason := c.PrefLabel.check(opts.RequireEnglish); reason != "" {
		return c.malformed("pref_label", reason)
	}
	if reason := c.Comment.check(opts.RequireEnglish); reason != "" {
		return c.malformed("comment", reason)
	}
	if c.LinkHTML != "" && !strings.HasPrefix(c.LinkHTML, "http://") && !strings.HasPrefix(c.LinkHTML, "https://") {
		return c.malformed("link_html", "must be an http(s) URL")
	}
	for i, member := range c.OneOf {
		if strings.TrimSpace(member) == "" {
			return c.malformed(fmt.Sprintf("one_of[%d]", i), "must not be empty")
		}
	}
	for i, r := range c.Restrictions {
		field := fmt.Sprintf("restrictions[%d]", i)
		if r.Property == "" {
			return c.malformed(field+".property", "is required")
		}
		set := 0
		for _, v := range []string{r.SomeValuesFrom, r.AllValuesFrom, r.HasValue} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return c.malformed(field, "exactly one of some_values_from, all_values_from, has_value is required")
		}
	}
	if card := c.Cardinality; card != nil {
		if card.Property == "" {
			return c.malformed("cardinality.property", "is required")
		}
		if card.Exactly == nil && card.Min == nil && card.Max == nil {
			return c.malformed("cardinality", "one of exactly, min, max is required")
		}
		if card.Exactly != nil && (card.Min != nil || card.Max != nil) {
			return c.malformed("cardinality", "exactly cannot be combined with min or max")
		}
		bounds := []struct {
			name string
			v    *int
		}{{"exactly", card.Exactly}, {"min", card.Min}, {"max", card.Max}}
		for _, b := range bounds {
			if b.v != nil && *b.v < 0 {
				return c.malformed("cardinality."+b.name, "must be >= 0")
			}
		}
		if card.Min != nil && card.Max != nil && *card.Max < *card.Min {
			return c.malformed("cardinality.max", "must be >= min")
		}
	}
	return nil
}

func (c *ClassRecord) malformed(field, reason string) error {
	return &MalformedRecordError{Source: c.Source, Kind: KindClasses, RecordID: c.ID, Field: field, Reason: reason}
}

// PropertyRecord declares an object or datatype property.
type PropertyRecord struct {
	ID           string       `json:"id"`
	PropertyType PropertyType `json:"property_type"`
	Domain       StringList   `json:"domain"`
	Range        string       `json:"range"`
	PrefLabel    LangMap      `json:"pref_label"`
	Comment      LangMap      `json:"comment"`

	Source string `json:"-"`
}

// Validate checks required fields. Whether the property type and range
// agree is decided later, once every class is known.
func (p *PropertyRecord) Validate(opts ValidationOptions) error {
	if reason := checkID(p.ID); reason != "" {
		return p.malformed("id", reason)
	}
	if p.PropertyType == "" {
		return p.malformed("property_type", "is required")
	}
	if len(p.Domain) == 0 {
		return p.malformed("domain", "is required")
	}
	for i, d := range p.Domain {
		if strings.TrimSpace(d) == "" {
			return p.malformed(fmt.Sprintf("domain[%d]", i), "must not be empty")
		}
	}
	if strings.TrimSpace(p.Range) == "" {
		return p.malformed("range", "is required")
	}
	if reason := p.PrefLabel.check(opts.RequireEnglish); reason != "" {
		return p.malformed("pref_label", reason)
	}
	if reason := p.Comment.check(opts.RequireEnglish); reason != "" {
		return p.malformed("comment", reason)
	}
	return nil
}

func (p *PropertyRecord) malformed(field, reason string) error {
	return &MalformedRecordError{Source: p.Source, Kind: KindProperties, RecordID: p.ID, Field: field, Reason: reason}
}

// InstanceRecord declares a named individual. Sources written for the
// original generator use "id" instead of "instance_name"; both are read.
type InstanceRecord struct {
	InstanceName string         `json:"instance_name"`
	LegacyID     string         `json:"id,omitempty"`
	ClassType    StringList     `json:"class_type"`
	PrefLabel    LangMap        `json:"pref_label"`
	Comment      LangMap        `json:"comment"`
	Properties   map[string]any `json:"properties,omitempty"`

	Source string `json:"-"`
}

// Name returns the instance identifier.
func (i *InstanceRecord) Name() string {
	if i.InstanceName != "" {
		return i.InstanceName
	}
	return i.LegacyID
}

// Validate checks required fields.
func (i *InstanceRecord) Validate(opts ValidationOptions) error {
	if i.InstanceName != "" && i.LegacyID != "" && i.InstanceName != i.LegacyID {
		return i.malformed("id", fmt.Sprintf("conflicts with instance_name %q", i.InstanceName))
	}
	if reason := checkID(i.Name()); reason != "" {
		return i.malformed("instance_name", reason)
	}
	if len(i.ClassType) == 0 {
		return i.malformed("class_type", "is required")
	}
	for n, ct := range i.ClassType {
		if strings.TrimSpace(ct) == "" {
			return i.malformed(fmt.Sprintf("class_type[%d]", n), "must not be empty")
		}
	}
	keys := make([]string, 0, len(i.Properties))
	for k := range i.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return i.malformed("properties", "property names must not be empty")
		}
		if reason := checkValue(i.Properties[k], true); reason != "" {
			return i.malformed("properties."+k, reason)
		}
	}
	if reason := i.PrefLabel.check(opts.RequireEnglish); reason != "" {
		return i.malformed("pref_label", reason)
	}
	if reason := i.Comment.check(opts.RequireEnglish); reason != "" {
		return i.malformed("comment", reason)
	}
	return nil
}

func (i *InstanceRecord) malformed(field, reason string) error {
	return &MalformedRecordError{Source: i.Source, Kind: KindInstances, RecordID: i.Name(), Field: field, Reason: reason}
}

// RestrictionSpec declares ClassName a measurement class carrying one
// numeric value and one unit.
type RestrictionSpec struct {
	ClassName        string   `json:"class_name"`
	HasValueProperty string   `json:"has_value_property"`
	HasUnitProperty  string   `json:"has_unit_property"`
	ValueDatatype    string   `json:"value_datatype,omitempty"`
	UnitEnumeration  []string `json:"unit_enumeration,omitempty"`
	Comment          LangMap  `json:"comment,omitempty"`

	Source string `json:"-"`
}

// Validate checks required fields.
func (r *RestrictionSpec) Validate(opts ValidationOptions) error {
	if strings.TrimSpace(r.ClassName) == "" {
		return r.malformed("class_name", "is required")
	}
	if reason := checkID(r.HasValueProperty); reason != "" {
		return r.malformed("has_value_property", reason)
	}
	if reason := checkID(r.HasUnitProperty); reason != "" {
		return r.malformed("has_unit_property", reason)
	}
	seen := make(map[string]bool, len(r.UnitEnumeration))
	for i, u := range r.UnitEnumeration {
		if u == "" {
			return r.malformed(fmt.Sprintf("unit_enumeration[%d]", i), "must not be empty")
		}
		if seen[u] {
			return r.malformed(fmt.Sprintf("unit_enumeration[%d]", i), fmt.Sprintf("duplicate unit %q", u))
		}
		seen[u] = true
	}
	if r.Comment != nil {
		if reason := r.Comment.check(false); reason != "" {
			return r.malformed("comment", reason)
		}
	}
	return nil
}

func (r *RestrictionSpec) malformed(field, reason string) error {
	return &MalformedRecordError{Source: r.Source, Kind: KindRestrictions, RecordID: r.ClassName, Field: field, Reason: reason}
}

// checkID reports why id cannot name a record, or "". Identifiers become
// the local part of an IRI in the ontology namespace.
func checkID(id string) string {
	if strings.TrimSpace(id) == "" {
		return "is required"
	}
	if strings.ContainsAny(id, " \t\r\n:/#<>\"{}|^`\\") {
		return fmt.Sprintf("%q must be a bare identifier without whitespace, ':', '/' or '#'", id)
	}
	return ""
}

// checkValue reports why v cannot be an instance property value, or "".
func checkValue(v any, allowList bool) string {
	switch val := v.(type) {
	case string, json.Number, float64, bool:
		return ""
	case []any:
		if !allowList {
			return "nested lists are not supported"
		}
		if len(val) == 0 {
			return "must not be an empty list"
		}
		for _, item := range val {
			if reason := checkValue(item, false); reason != "" {
				return reason
			}
		}
		return ""
	case nil:
		return "must not be null"
	}
	return "must be a string, number, boolean or a list of those"
}
