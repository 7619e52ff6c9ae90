// Package graph holds the compiled ontology as an immutable RDF graph and
// publishes serialized documents to NATS.
package graph

import (
	"sort"

	"github.com/c360studio/ontoc/vocabulary/owl"
)

// Subject is one named resource and everything said about it.
type Subject struct {
	IRI     string
	Section Section
	Pairs   []PredicateObject
}

// Graph is a compiled ontology. It is built once by a Builder and never
// changes afterwards; accessors return copies.
type Graph struct {
	prefixes owl.PrefixMap
	subjects []Subject
	index    map[string]int
	triples  int
}

// Prefixes returns the namespace bindings serializers should declare.
func (g *Graph) Prefixes() owl.PrefixMap {
	return g.prefixes.Clone()
}

// Subjects returns the subjects ordered by section, then IRI. Pairs are
// in predicate rank order.
func (g *Graph) Subjects() []Subject {
	out := make([]Subject, len(g.subjects))
	for i, s := range g.subjects {
		out[i] = s.clone()
	}
	return out
}

// Subject returns the subject with the given IRI.
func (g *Graph) Subject(iri string) (Subject, bool) {
	i, ok := g.index[iri]
	if !ok {
		return Subject{}, false
	}
	return g.subjects[i].clone(), true
}

func (s Subject) clone() Subject {
	return Subject{IRI: s.IRI, Section: s.Section, Pairs: clonePairs(s.Pairs)}
}

// Objects returns the objects of predicate under subject.
func (g *Graph) Objects(subject, predicate string) []Term {
	s, ok := g.Subject(subject)
	if !ok {
		return nil
	}
	var out []Term
	for _, po := range s.Pairs {
		if po.Predicate == predicate {
			out = append(out, po.Object)
		}
	}
	return out
}

// Len returns the number of triples, counting those inside blank nodes
// and lists.
func (g *Graph) Len() int {
	return g.triples
}

// Builder accumulates triples for a Graph.
type Builder struct {
	prefixes owl.PrefixMap
	subjects map[string]*Subject
}

// NewBuilder creates a builder that will declare prefixes.
func NewBuilder(prefixes owl.PrefixMap) *Builder {
	return &Builder{
		prefixes: prefixes.Clone(),
		subjects: make(map[string]*Subject),
	}
}

// Add records predicate/object under subject. The first Add for a subject
// fixes its section.
func (b *Builder) Add(section Section, subject, predicate string, object Term) {
	s, ok := b.subjects[subject]
	if !ok {
		s = &Subject{IRI: subject, Section: section}
		b.subjects[subject] = s
	}
	s.Pairs = append(s.Pairs, PredicateObject{Predicate: predicate, Object: object})
}

// Has reports whether subject already has triples.
func (b *Builder) Has(subject string) bool {
	_, ok := b.subjects[subject]
	return ok
}

// Build sorts and dedups everything added so far into a Graph.
func (b *Builder) Build() *Graph {
	g := &Graph{prefixes: b.prefixes.Clone()}

	for _, s := range b.subjects {
		pairs := normalizePairs(s.Pairs)
		for _, po := range pairs {
			g.triples += 1 + po.Object.tripleCount()
		}
		g.subjects = append(g.subjects, Subject{IRI: s.IRI, Section: s.Section, Pairs: pairs})
	}

	sort.Slice(g.subjects, func(i, j int) bool {
		a, b := g.subjects[i], g.subjects[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.IRI < b.IRI
	})

	g.index = make(map[string]int, len(g.subjects))
	for i, s := range g.subjects {
		g.index[s.IRI] = i
	}

	return g
}

// normalizePairs orders pairs by rank and drops exact duplicates.
func normalizePairs(pairs []PredicateObject) []PredicateObject {
	type keyed struct {
		po  PredicateObject
		key string
	}
	ks := make([]keyed, len(pairs))
	for i, po := range pairs {
		ks[i] = keyed{po: po, key: po.Object.key()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		return lessPO(ks[i].po, ks[j].po, ks[i].key, ks[j].key)
	})

	out := make([]PredicateObject, 0, len(ks))
	for i, k := range ks {
		if i > 0 && k.po.Predicate == ks[i-1].po.Predicate && k.key == ks[i-1].key {
			continue
		}
		out = append(out, k.po)
	}
	return out
}
