package owl

import (
	"sort"
	"strings"
)

// scalarLocalNames lists the XSD datatypes accepted as DatatypeProperty ranges.
var scalarLocalNames = []string{
	"anyURI",
	"boolean",
	"date",
	"dateTime",
	"decimal",
	"double",
	"duration",
	"float",
	"integer",
	"nonNegativeInteger",
	"positiveInteger",
	"string",
	"time",
}

// ScalarSet is the set of datatype tags a DatatypeProperty may range over.
// Keys are canonical prefixed names ("xsd:integer"); values are full IRIs.
type ScalarSet map[string]string

// DefaultScalars returns the built-in scalar set: the XSD types above plus
// rdfs:Literal.
func DefaultScalars() ScalarSet {
	s := make(ScalarSet, len(scalarLocalNames)+1)
	for _, name := range scalarLocalNames {
		s["xsd:"+name] = NamespaceXSD + name
	}
	s["rdfs:Literal"] = RDFSLiteral
	return s
}

// Add registers an extra scalar tag. The tag must be a prefixed name whose
// prefix is bound in pm; it returns false otherwise.
func (s ScalarSet) Add(tag string, pm PrefixMap) bool {
	iri, ok := pm.Expand(tag)
	if !ok {
		return false
	}
	s[canonicalTag(tag)] = iri
	return true
}

// Lookup returns the IRI of a scalar tag. The prefix is matched
// case-insensitively; the local name is not. Absolute IRIs are accepted
// when they name a member of the set.
func (s ScalarSet) Lookup(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if iri, ok := s[canonicalTag(tag)]; ok {
		return iri, true
	}
	for _, iri := range s {
		if iri == tag {
			return iri, true
		}
	}
	return "", false
}

// Tags returns the sorted scalar tags, for error messages.
func (s ScalarSet) Tags() []string {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ScalarIRI looks a tag up in the default scalar set.
func ScalarIRI(tag string) (string, bool) {
	return DefaultScalars().Lookup(tag)
}

func canonicalTag(tag string) string {
	prefix, local, ok := strings.Cut(tag, ":")
	if !ok {
		return tag
	}
	p := strings.ToLower(prefix)
	if p == "rdfs" && local == "Literal" {
		return "rdfs:Literal"
	}
	return p + ":" + local
}
