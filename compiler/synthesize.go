package compiler

import (
	"fmt"
	"sort"

	"github.com/c360studio/ontoc/model"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// Role says which half of a measurement a synthesized property carries.
type Role string

// Measurement roles.
const (
	RoleValue Role = "value"
	RoleUnit  Role = "unit"
)

// builtinSource names the origin of the global value/unit properties in errors.
const builtinSource = "<built-in>"

// SynthesizedProperty is a DatatypeProperty generated from a RestrictionSpec.
type SynthesizedProperty struct {
	ID    string
	Class string
	Role  Role
	// Range is the datatype IRI. Empty when Units is set.
	Range string
	// Units enumerates the allowed unit strings.
	Units []string
	Spec  *model.RestrictionSpec
}

// Measurement marks a class that must carry exactly one value and one unit.
type Measurement struct {
	Class string
	Value string
	Unit  string
	Spec  *model.RestrictionSpec
}

// Synthesis is the output of Synthesize.
type Synthesis struct {
	// Properties are sorted by id.
	Properties []SynthesizedProperty
	// Measurements are keyed by class id.
	Measurements map[string]Measurement
}

// Synthesize expands every RestrictionSpec into its two properties and
// marks the target class as a measurement class. Specs are processed in
// class name order so conflicts are reported the same way on every run.
func Synthesize(res *Resolution, opts Options) (*Synthesis, error) {
	opts = opts.withDefaults()
	rs := res.Records

	if opts.BaseProperties {
		for _, id := range []string{opts.ValueProperty, opts.UnitProperty} {
			if o, ok := rs.Lookup(id); ok {
				return nil, &model.DuplicateIdError{
					ID:          id,
					Kind:        o.Kind,
					Source:      o.Source,
					FirstKind:   model.KindProperties,
					FirstSource: builtinSource,
				}
			}
		}
	}

	syn := &Synthesis{Measurements: make(map[string]Measurement)}
	owner := make(map[string]*model.RestrictionSpec)

	for _, spec := range rs.SortedRestrictions() {
		classID := res.LocalID(spec.ClassName)
		conflict := func(format string, args ...any) error {
			return &model.RestrictionConflictError{
				Source:    spec.Source,
				ClassName: spec.ClassName,
				Reason:    fmt.Sprintf(format, args...),
			}
		}

		if spec.HasValueProperty == spec.HasUnitProperty {
			return nil, conflict("has_value_property and has_unit_property are both %q", spec.HasValueProperty)
		}

		if prev, ok := syn.Measurements[classID]; ok {
			if prev.Value == spec.HasValueProperty && prev.Unit == spec.HasUnitProperty {
				return nil, conflict("restriction is declared twice (first in %s)", prev.Spec.Source)
			}
			return nil, conflict("class already has value/unit pair %s/%s from %s",
				prev.Value, prev.Unit, prev.Spec.Source)
		}

		if c := rs.Classes[classID]; len(c.Restrictions) > 0 || c.Cardinality != nil {
			return nil, conflict("a measurement class cannot declare its own restrictions or cardinality (see %s)", c.Source)
		}

		for _, id := range []string{spec.HasValueProperty, spec.HasUnitProperty} {
			if o, ok := rs.Lookup(id); ok {
				return nil, conflict("synthesized property %q collides with a %s declared in %s", id, o.Kind.Singular(), o.Source)
			}
			if opts.BaseProperties && (id == opts.ValueProperty || id == opts.UnitProperty) {
				return nil, conflict("synthesized property %q collides with the global measurement property", id)
			}
			if other, ok := owner[id]; ok {
				return nil, conflict("synthesized property %q is already generated for class %q in %s", id, other.ClassName, other.Source)
			}
		}

		valueRange := owl.XSDDecimal
		if spec.ValueDatatype != "" {
			iri, ok := opts.Scalars.Lookup(spec.ValueDatatype)
			if !ok {
				return nil, &model.InvalidPropertyTypeError{
					Source:       spec.Source,
					PropertyID:   spec.HasValueProperty,
					PropertyType: model.DatatypeProperty,
					Range:        spec.ValueDatatype,
					Reason:       "value_datatype is not a supported scalar type",
				}
			}
			valueRange = iri
		}

		unit := SynthesizedProperty{ID: spec.HasUnitProperty, Class: classID, Role: RoleUnit, Spec: spec}
		if len(spec.UnitEnumeration) > 0 {
			unit.Units = append([]string(nil), spec.UnitEnumeration...)
		} else {
			unit.Range = owl.XSDString
		}

		syn.Properties = append(syn.Properties,
			SynthesizedProperty{ID: spec.HasValueProperty, Class: classID, Role: RoleValue, Range: valueRange, Spec: spec},
			unit,
		)
		syn.Measurements[classID] = Measurement{
			Class: classID,
			Value: spec.HasValueProperty,
			Unit:  spec.HasUnitProperty,
			Spec:  spec,
		}
		owner[spec.HasValueProperty] = spec
		owner[spec.HasUnitProperty] = spec
	}

	sort.Slice(syn.Properties, func(i, j int) bool {
		return syn.Properties[i].ID < syn.Properties[j].ID
	})
	return syn, nil
}
