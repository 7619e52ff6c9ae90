package graph

import "github.com/c360studio/ontoc/vocabulary/owl"

// Section groups subjects in the output. Sections are written in order.
type Section int

// Output sections.
const (
	SectionOntology Section = iota
	SectionClasses
	SectionObjectProperties
	SectionDatatypeProperties
	SectionInstances
)

func (s Section) String() string {
	switch s {
	case SectionOntology:
		return "Ontology"
	case SectionClasses:
		return "Classes"
	case SectionObjectProperties:
		return "Object properties"
	case SectionDatatypeProperties:
		return "Datatype properties"
	case SectionInstances:
		return "Instances"
	}
	return "Other"
}

// predicateRank fixes the order predicates are written under a subject.
// Unranked predicates follow, sorted by IRI.
var predicateRank = map[string]int{
	owl.RDFType:             0,
	owl.RDFSSubClassOf:      1,
	owl.PropEquivalentClass: 2,
	owl.RDFSSubPropertyOf:   3,
	owl.RDFSDomain:          4,
	owl.RDFSRange:           5,
	owl.PropOneOf:           6,
	owl.SKOSPrefLabel:       7,
	owl.RDFSLabel:           8,
	owl.RDFSComment:         9,
	owl.RDFSSeeAlso:         10,
	owl.PropVersionInfo:     11,
}

var unranked = len(predicateRank)

func rankOf(predicate string) int {
	if r, ok := predicateRank[predicate]; ok {
		return r
	}
	return unranked
}

// lessPO orders pairs by predicate rank, then predicate IRI, then object.
// Literals of one predicate are ordered by language tag first.
func lessPO(a, b PredicateObject, ka, kb string) bool {
	ra, rb := rankOf(a.Predicate), rankOf(b.Predicate)
	if ra != rb {
		return ra < rb
	}
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	if a.Object.Kind != b.Object.Kind {
		return a.Object.Kind < b.Object.Kind
	}
	if a.Object.Kind == KindLiteral && a.Object.Lang != b.Object.Lang {
		return a.Object.Lang < b.Object.Lang
	}
	return ka < kb
}
