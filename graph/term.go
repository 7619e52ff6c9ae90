package graph

import (
	"strings"

	"github.com/c360studio/ontoc/vocabulary/owl"
)

// TermKind distinguishes the shapes an object can take.
type TermKind int

// Term kinds, in the order objects of one predicate are written.
const (
	KindIRI TermKind = iota
	KindLiteral
	KindList
	KindBlank
)

// Term is an RDF object. Blank nodes and lists are carried inline so a
// serializer can write them nested or label them as it walks.
type Term struct {
	Kind TermKind

	// Value is the IRI or the lexical form of a literal.
	Value string
	// Lang is set for language-tagged literals.
	Lang string
	// Datatype is set for typed literals other than xsd:string.
	Datatype string

	// Pairs are the predicate-object pairs of a blank node.
	Pairs []PredicateObject
	// Items are the members of a list.
	Items []Term
}

// PredicateObject is one predicate and its object under a subject.
type PredicateObject struct {
	Predicate string
	Object    Term
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Literal returns a plain string literal.
func Literal(v string) Term {
	return Term{Kind: KindLiteral, Value: v}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang}
}

// TypedLiteral returns a literal with a datatype. xsd:string collapses to
// a plain literal, as RDF 1.1 treats them as the same term.
func TypedLiteral(v, datatype string) Term {
	if datatype == owl.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// Blank returns an anonymous node with the given pairs. Pair order is
// kept as given.
func Blank(pairs ...PredicateObject) Term {
	return Term{Kind: KindBlank, Pairs: pairs}
}

// List returns an RDF collection.
func List(items ...Term) Term {
	return Term{Kind: KindList, Items: items}
}

// PO is shorthand for building a PredicateObject.
func PO(predicate string, object Term) PredicateObject {
	return PredicateObject{Predicate: predicate, Object: object}
}

// key returns a canonical string for the term, used to order and dedup
// objects of one predicate.
func (t Term) key() string {
	var sb strings.Builder
	t.writeKey(&sb)
	return sb.String()
}

func (t Term) writeKey(sb *strings.Builder) {
	switch t.Kind {
	case KindIRI:
		sb.WriteString("<" + t.Value + ">")
	case KindLiteral:
		sb.WriteString("\"" + t.Value + "\"")
		if t.Lang != "" {
			sb.WriteString("@" + t.Lang)
		}
		if t.Datatype != "" {
			sb.WriteString("^^" + t.Datatype)
		}
	case KindList:
		sb.WriteString("(")
		for _, item := range t.Items {
			item.writeKey(sb)
			sb.WriteString(" ")
		}
		sb.WriteString(")")
	case KindBlank:
		sb.WriteString("[")
		for _, po := range t.Pairs {
			sb.WriteString(po.Predicate + " ")
			po.Object.writeKey(sb)
			sb.WriteString(";")
		}
		sb.WriteString("]")
	}
}

// tripleCount is the number of triples the term contributes beyond the
// one that references it.
func (t Term) tripleCount() int {
	switch t.Kind {
	case KindBlank:
		n := 0
		for _, po := range t.Pairs {
			n += 1 + po.Object.tripleCount()
		}
		return n
	case KindList:
		// rdf:first and rdf:rest per cell
		n := 2 * len(t.Items)
		for _, item := range t.Items {
			n += item.tripleCount()
		}
		return n
	}
	return 0
}

// clone copies the term along with any nested blank pairs and list items.
func (t Term) clone() Term {
	t.Pairs = clonePairs(t.Pairs)
	if t.Items != nil {
		items := make([]Term, len(t.Items))
		for i, item := range t.Items {
			items[i] = item.clone()
		}
		t.Items = items
	}
	return t
}

func clonePairs(pairs []PredicateObject) []PredicateObject {
	if pairs == nil {
		return nil
	}
	out := make([]PredicateObject, len(pairs))
	for i, po := range pairs {
		out[i] = PredicateObject{Predicate: po.Predicate, Object: po.Object.clone()}
	}
	return out
}
