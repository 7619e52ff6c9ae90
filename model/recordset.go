package model

import (
	"sort"

	"github.com/samber/lo"
)

// Origin records where an identifier was declared.
type Origin struct {
	Kind   Kind
	Source string
}

// RecordSet holds every loaded record, keyed by identifier.
type RecordSet struct {
	Classes      map[string]*ClassRecord
	Properties   map[string]*PropertyRecord
	Instances    map[string]*InstanceRecord
	Restrictions []*RestrictionSpec

	origins map[string]Origin
}

// NewRecordSet returns an empty set.
func NewRecordSet() *RecordSet {
	return &RecordSet{
		Classes:    make(map[string]*ClassRecord),
		Properties: make(map[string]*PropertyRecord),
		Instances:  make(map[string]*InstanceRecord),
		origins:    make(map[string]Origin),
	}
}

// AddClass adds a class, failing with DuplicateIdError on a collision.
func (rs *RecordSet) AddClass(c *ClassRecord) error {
	if err := rs.claim(c.ID, KindClasses, c.Source); err != nil {
		return err
	}
	rs.Classes[c.ID] = c
	return nil
}

// AddProperty adds a property, failing with DuplicateIdError on a collision.
func (rs *RecordSet) AddProperty(p *PropertyRecord) error {
	if err := rs.claim(p.ID, KindProperties, p.Source); err != nil {
		return err
	}
	rs.Properties[p.ID] = p
	return nil
}

// AddInstance adds an instance, failing with DuplicateIdError on a collision.
func (rs *RecordSet) AddInstance(i *InstanceRecord) error {
	if err := rs.claim(i.Name(), KindInstances, i.Source); err != nil {
		return err
	}
	rs.Instances[i.Name()] = i
	return nil
}

// AddRestriction appends a restriction spec. Specs carry no identifier of
// their own; conflicts are detected during synthesis.
func (rs *RecordSet) AddRestriction(r *RestrictionSpec) {
	rs.Restrictions = append(rs.Restrictions, r)
}

// Lookup returns where id was declared.
func (rs *RecordSet) Lookup(id string) (Origin, bool) {
	o, ok := rs.origins[id]
	return o, ok
}

// HasClass reports whether id names a declared class.
func (rs *RecordSet) HasClass(id string) bool {
	_, ok := rs.Classes[id]
	return ok
}

// ClassIDs returns the class identifiers in sorted order.
func (rs *RecordSet) ClassIDs() []string {
	return sortedKeys(rs.Classes)
}

// PropertyIDs returns the property identifiers in sorted order.
func (rs *RecordSet) PropertyIDs() []string {
	return sortedKeys(rs.Properties)
}

// InstanceIDs returns the instance identifiers in sorted order.
func (rs *RecordSet) InstanceIDs() []string {
	return sortedKeys(rs.Instances)
}

// SortedRestrictions returns restriction specs ordered by class name, then by
// source, so synthesis does not depend on file order.
func (rs *RecordSet) SortedRestrictions() []*RestrictionSpec {
	out := make([]*RestrictionSpec, len(rs.Restrictions))
	copy(out, rs.Restrictions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClassName != out[j].ClassName {
			return out[i].ClassName < out[j].ClassName
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Count returns the number of records of a kind.
func (rs *RecordSet) Count(kind Kind) int {
	switch kind {
	case KindClasses:
		return len(rs.Classes)
	case KindProperties:
		return len(rs.Properties)
	case KindInstances:
		return len(rs.Instances)
	case KindRestrictions:
		return len(rs.Restrictions)
	}
	return 0
}

func (rs *RecordSet) claim(id string, kind Kind, source string) error {
	if first, exists := rs.origins[id]; exists {
		return &DuplicateIdError{
			ID:          id,
			Kind:        kind,
			Source:      source,
			FirstKind:   first.Kind,
			FirstSource: first.Source,
		}
	}
	rs.origins[id] = Origin{Kind: kind, Source: source}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
