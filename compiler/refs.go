package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/ontoc/vocabulary/owl"
)

// Ref is a parsed record reference.
type Ref struct {
	IRI string
	// ID is the local identifier; empty for external references.
	ID string
}

// Local reports whether the reference points into the ontology itself.
func (r Ref) Local() bool { return r.ID != "" }

// Refs parses references relative to one ontology namespace.
type Refs struct {
	base     string
	prefixes owl.PrefixMap
}

// NewRefs creates a parser for references in the base namespace.
func NewRefs(base string, prefixes owl.PrefixMap) *Refs {
	return &Refs{base: base, prefixes: prefixes}
}

// Parse classifies ref as local or external. It does not check that a
// local reference is declared.
func (r *Refs) Parse(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return Ref{}, errors.New("empty reference")
	case owl.IsAbsoluteIRI(ref):
		return r.fromIRI(ref), nil
	case strings.Contains(ref, ":"):
		iri, ok := r.prefixes.Expand(ref)
		if !ok {
			prefix, _, _ := strings.Cut(ref, ":")
			return Ref{}, fmt.Errorf("unknown prefix %q", prefix)
		}
		return r.fromIRI(iri), nil
	}
	return Ref{IRI: r.base + ref, ID: ref}, nil
}

// IRI returns the IRI of a local identifier.
func (r *Refs) IRI(id string) string {
	return r.base + id
}

func (r *Refs) fromIRI(iri string) Ref {
	local, ok := strings.CutPrefix(iri, r.base)
	if ok && local != "" && !strings.ContainsAny(local, "/#") {
		return Ref{IRI: iri, ID: local}
	}
	return Ref{IRI: iri}
}
