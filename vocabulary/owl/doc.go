// Package owl provides the W3C vocabulary terms used by the ontology compiler.
//
// The compiler emits OWL 2 ontologies and only ever needs a small, fixed
// slice of the RDF, RDFS, OWL, XSD and SKOS vocabularies. Those terms are
// declared here as full IRIs so the graph and export packages never build
// IRIs by string concatenation.
//
// # Namespaces
//
//	rdf   http://www.w3.org/1999/02/22-rdf-syntax-ns#
//	rdfs  http://www.w3.org/2000/01/rdf-schema#
//	owl   http://www.w3.org/2002/07/owl#
//	xsd   http://www.w3.org/2001/XMLSchema#
//	skos  http://www.w3.org/2004/02/skos/core#
//
// # Scalar types
//
// DatatypeProperty ranges are restricted to the scalar set in datatypes.go.
// Tags are written as prefixed names ("xsd:integer") and matched with a
// case-insensitive prefix, so "XSD:decimal" is accepted:
//
//	iri, ok := owl.ScalarIRI("XSD:decimal") // → http://www.w3.org/2001/XMLSchema#decimal, true
//
// # Prefixes
//
// PrefixMap expands prefixed names into IRIs and compacts IRIs back into
// prefixed names for Turtle output:
//
//	pm := owl.DefaultPrefixes()
//	pm.Bind("onto", "https://example.org/onto#")
//	iri, ok := pm.Expand("onto:Processor")
//	curie, ok := pm.Compact(iri) // → "onto:Processor"
package owl
