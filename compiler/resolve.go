package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/c360studio/ontoc/model"
)

// Resolution is a RecordSet whose references have all been checked. Later
// stages read IRIs from it instead of re-validating.
type Resolution struct {
	Records *model.RecordSet

	refs *Refs
	// implicit holds property ids the compiler itself declares: the global
	// value/unit properties and every synthesized property.
	implicit map[string]model.Kind
}

// Resolve checks every reference in rs and the acyclicity of the class
// hierarchy. Records are visited in sorted id order so the first error
// reported does not depend on file order.
func Resolve(rs *model.RecordSet, opts Options) (*Resolution, error) {
	opts = opts.withDefaults()
	res := &Resolution{
		Records:  rs,
		refs:     NewRefs(opts.BaseURI, opts.Prefixes),
		implicit: make(map[string]model.Kind),
	}
	if opts.BaseProperties {
		res.implicit[opts.ValueProperty] = model.KindProperties
		res.implicit[opts.UnitProperty] = model.KindProperties
	}
	for _, spec := range rs.Restrictions {
		res.implicit[spec.HasValueProperty] = model.KindProperties
		res.implicit[spec.HasUnitProperty] = model.KindProperties
	}

	if err := res.resolveClasses(); err != nil {
		return nil, err
	}
	if err := res.resolveProperties(); err != nil {
		return nil, err
	}
	if err := res.resolveInstances(); err != nil {
		return nil, err
	}
	if err := res.resolveRestrictions(); err != nil {
		return nil, err
	}
	if err := detectCycles(rs, res.refs); err != nil {
		return nil, err
	}
	return res, nil
}

// IRI returns the IRI of a reference that passed resolution.
func (res *Resolution) IRI(ref string) string {
	r, err := res.refs.Parse(ref)
	if err != nil {
		return res.refs.IRI(ref)
	}
	return r.IRI
}

// LocalID returns the local id of ref, or "" when it is external.
func (res *Resolution) LocalID(ref string) string {
	r, err := res.refs.Parse(ref)
	if err != nil {
		return ""
	}
	return r.ID
}

// kindOf returns the kind of a local id, including implicit properties.
func (res *Resolution) kindOf(id string) (model.Kind, bool) {
	if o, ok := res.Records.Lookup(id); ok {
		return o.Kind, true
	}
	k, ok := res.implicit[id]
	return k, ok
}

// Declared reports whether id names any record or implicit property.
func (res *Resolution) Declared(id string) bool {
	_, ok := res.kindOf(id)
	return ok
}

// check resolves target and requires a local target to be one of want.
func (res *Resolution) check(source, recordID, field, target string, want ...model.Kind) (Ref, error) {
	unresolved := func(reason string) error {
		return &model.UnresolvedReferenceError{
			Source: source, RecordID: recordID, Field: field, Target: target, Reason: reason,
		}
	}

	ref, err := res.refs.Parse(target)
	if err != nil {
		return Ref{}, unresolved(err.Error())
	}
	if !ref.Local() {
		return ref, nil
	}

	kind, ok := res.kindOf(ref.ID)
	if !ok {
		return Ref{}, unresolved("")
	}
	if !lo.Contains(want, kind) {
		names := lo.Map(want, func(k model.Kind, _ int) string { return article(k.Singular()) })
		return Ref{}, unresolved(fmt.Sprintf("which is %s, not %s", article(kind.Singular()), strings.Join(names, " or ")))
	}
	return ref, nil
}

func (res *Resolution) resolveClasses() error {
	rs := res.Records
	for _, id := range rs.ClassIDs() {
		c := rs.Classes[id]

		if c.ParentClass != "" {
			field := "parent_class"
			if c.ParentFromDefault {
				field = "parent_class (default_parent)"
			}
			if _, err := res.check(c.Source, id, field, c.ParentClass, model.KindClasses); err != nil {
				return err
			}
		}
		if c.Equivalent != "" {
			if _, err := res.check(c.Source, id, "equivalent", c.Equivalent, model.KindClasses); err != nil {
				return err
			}
		}
		for i, member := range c.OneOf {
			if _, err := res.check(c.Source, id, fmt.Sprintf("one_of[%d]", i), member, model.KindInstances); err != nil {
				return err
			}
		}
		for i, r := range c.Restrictions {
			field := fmt.Sprintf("restrictions[%d]", i)
			if _, err := res.check(c.Source, id, field+".property", r.Property, model.KindProperties); err != nil {
				return err
			}
			switch {
			case r.SomeValuesFrom != "":
				_, err := res.check(c.Source, id, field+".some_values_from", r.SomeValuesFrom, model.KindClasses)
				if err != nil {
					return err
				}
			case r.AllValuesFrom != "":
				_, err := res.check(c.Source, id, field+".all_values_from", r.AllValuesFrom, model.KindClasses)
				if err != nil {
					return err
				}
			case r.HasValue != "":
				_, err := res.check(c.Source, id, field+".has_value", r.HasValue, model.KindInstances, model.KindClasses)
				if err != nil {
					return err
				}
			}
		}
		if card := c.Cardinality; card != nil {
			if _, err := res.check(c.Source, id, "cardinality.property", card.Property, model.KindProperties); err != nil {
				return err
			}
			if card.OnClass != "" {
				if _, err := res.check(c.Source, id, "cardinality.on_class", card.OnClass, model.KindClasses); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (res *Resolution) resolveProperties() error {
	rs := res.Records
	for _, id := range rs.PropertyIDs() {
		p := rs.Properties[id]
		for i, d := range p.Domain {
			field := "domain"
			if len(p.Domain) > 1 {
				field = fmt.Sprintf("domain[%d]", i)
			}
			if _, err := res.check(p.Source, id, field, d, model.KindClasses); err != nil {
				return err
			}
		}
		// Scalar ranges are checked by ValidateProperties.
		if p.PropertyType == model.ObjectProperty {
			if _, err := res.check(p.Source, id, "range", p.Range, model.KindClasses); err != nil {
				return err
			}
		}
	}
	return nil
}

func (res *Resolution) resolveInstances() error {
	rs := res.Records
	for _, id := range rs.InstanceIDs() {
		inst := rs.Instances[id]
		for i, ct := range inst.ClassType {
			field := "class_type"
			if len(inst.ClassType) > 1 {
				field = fmt.Sprintf("class_type[%d]", i)
			}
			if _, err := res.check(inst.Source, id, field, ct, model.KindClasses); err != nil {
				return err
			}
		}
		for _, key := range sortedKeys(inst.Properties) {
			ref, err := res.check(inst.Source, id, "properties."+key, key, model.KindProperties)
			if err != nil {
				return err
			}
			if err := res.resolveObjectValues(id, inst, key, ref); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveObjectValues requires every value of a declared ObjectProperty
// to reference an instance or a class.
func (res *Resolution) resolveObjectValues(id string, inst *model.InstanceRecord, key string, property Ref) error {
	if !property.Local() {
		return nil
	}
	p, ok := res.Records.Properties[property.ID]
	if !ok || p.PropertyType != model.ObjectProperty {
		return nil
	}
	values, isList := inst.Properties[key].([]any)
	if !isList {
		values = []any{inst.Properties[key]}
	}
	for i, v := range values {
		field := "properties." + key
		if isList {
			field = fmt.Sprintf("%s[%d]", field, i)
		}
		target, ok := v.(string)
		if !ok {
			return &model.MalformedRecordError{
				Source:   inst.Source,
				Kind:     model.KindInstances,
				RecordID: id,
				Field:    field,
				Reason:   fmt.Sprintf("object property %q takes references, got %v", key, v),
			}
		}
		if _, err := res.check(inst.Source, id, field, target, model.KindInstances, model.KindClasses); err != nil {
			return err
		}
	}
	return nil
}

func (res *Resolution) resolveRestrictions() error {
	for _, spec := range res.Records.SortedRestrictions() {
		ref, err := res.check(spec.Source, spec.ClassName, "class_name", spec.ClassName, model.KindClasses)
		if err != nil {
			return err
		}
		if !ref.Local() {
			return &model.UnresolvedReferenceError{
				Source:   spec.Source,
				RecordID: spec.ClassName,
				Field:    "class_name",
				Target:   spec.ClassName,
				Reason:   "which is not a class declared in this ontology",
			}
		}
	}
	return nil
}

// detectCycles walks the parent graph depth-first in sorted id order. A
// class reached again while still being visited closes a cycle; the
// reported path repeats that class at the end.
func detectCycles(rs *model.RecordSet, refs *Refs) error {
	visiting := make(map[string]bool)
	done := make(map[string]bool)
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		if done[id] {
			return nil
		}
		if visiting[id] {
			start := lo.IndexOf(stack, id)
			path := append(append([]string(nil), stack[start:]...), id)
			return &model.CyclicHierarchyError{Path: path, Source: rs.Classes[id].Source}
		}

		visiting[id] = true
		stack = append(stack, id)

		if parent := parentID(rs, refs, id); parent != "" {
			if err := visit(parent); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(visiting, id)
		done[id] = true
		return nil
	}

	for _, id := range rs.ClassIDs() {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// parentID returns the local parent class of id, or "".
func parentID(rs *model.RecordSet, refs *Refs, id string) string {
	c := rs.Classes[id]
	if c == nil || c.ParentClass == "" {
		return ""
	}
	ref, err := refs.Parse(c.ParentClass)
	if err != nil || !ref.Local() || !rs.HasClass(ref.ID) {
		return ""
	}
	return ref.ID
}

func article(noun string) string {
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
