package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontoc/export"
	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

const ns = "https://example.org/onto#"

func prefixes() owl.PrefixMap {
	pm := owl.DefaultPrefixes()
	pm.Bind("onto", ns)
	return pm
}

func sampleGraph() *graph.Graph {
	b := graph.NewBuilder(prefixes())
	b.Add(graph.SectionOntology, "https://example.org/onto", owl.RDFType, graph.IRI(owl.ClassOntology))
	b.Add(graph.SectionClasses, ns+"DieSize", owl.RDFType, graph.IRI(owl.ClassClass))
	b.Add(graph.SectionClasses, ns+"DieSize", owl.RDFSSubClassOf, graph.IRI(owl.ClassThing))
	b.Add(graph.SectionClasses, ns+"DieSize", owl.RDFSSubClassOf, graph.Blank(
		graph.PO(owl.RDFType, graph.IRI(owl.ClassRestriction)),
		graph.PO(owl.PropOnProperty, graph.IRI(ns+"hasDieSizeValue")),
		graph.PO(owl.PropCardinality, graph.TypedLiteral("1", owl.XSDNonNegativeInteger)),
	))
	b.Add(graph.SectionClasses, ns+"DieSize", owl.SKOSPrefLabel, graph.LangLiteral("Die \"size\"", "en"))
	b.Add(graph.SectionDatatypeProperties, ns+"hasDieSizeUnit", owl.RDFType, graph.IRI(owl.ClassDatatypeProperty))
	b.Add(graph.SectionDatatypeProperties, ns+"hasDieSizeUnit", owl.RDFSRange, graph.Blank(
		graph.PO(owl.RDFType, graph.IRI(owl.RDFSDatatype)),
		graph.PO(owl.PropOneOf, graph.List(graph.Literal("mm"), graph.Literal("cm"))),
	))
	return b.Build()
}

func TestToTurtle(t *testing.T) {
	out, err := export.ToTurtle(sampleGraph())
	require.NoError(t, err)

	want := `@prefix onto: <https://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

#
# Ontology
#

<https://example.org/onto> a owl:Ontology .

#
# Classes
#

onto:DieSize a owl:Class ;
    rdfs:subClassOf owl:Thing,
        [ a owl:Restriction ; owl:onProperty onto:hasDieSizeValue ; owl:cardinality "1"^^xsd:nonNegativeInteger ] ;
    skos:prefLabel "Die \"size\""@en .

#
# Datatype properties
#

onto:hasDieSizeUnit a owl:DatatypeProperty ;
    rdfs:range [ a rdfs:Datatype ; owl:oneOf ( "mm" "cm" ) ] .
`
	assert.Equal(t, want, string(out))
}

func TestToNTriples(t *testing.T) {
	out, err := export.ToNTriples(sampleGraph())
	require.NoError(t, err)

	want := `<https://example.org/onto> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Ontology> .
<https://example.org/onto#DieSize> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<https://example.org/onto#DieSize> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://www.w3.org/2002/07/owl#Thing> .
<https://example.org/onto#DieSize> <http://www.w3.org/2000/01/rdf-schema#subClassOf> _:b0 .
_:b0 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Restriction> .
_:b0 <http://www.w3.org/2002/07/owl#onProperty> <https://example.org/onto#hasDieSizeValue> .
_:b0 <http://www.w3.org/2002/07/owl#cardinality> "1"^^<http://www.w3.org/2001/XMLSchema#nonNegativeInteger> .
<https://example.org/onto#DieSize> <http://www.w3.org/2004/02/skos/core#prefLabel> "Die \"size\""@en .
<https://example.org/onto#hasDieSizeUnit> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#DatatypeProperty> .
<https://example.org/onto#hasDieSizeUnit> <http://www.w3.org/2000/01/rdf-schema#range> _:b1 .
_:b1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2000/01/rdf-schema#Datatype> .
_:b1 <http://www.w3.org/2002/07/owl#oneOf> _:b2 .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "mm" .
_:b2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> _:b3 .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "cm" .
_:b3 <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`
	assert.Equal(t, want, string(out))

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, sampleGraph().Len(), "one line per triple")
}

func TestExport_Deterministic(t *testing.T) {
	for _, format := range []export.Format{export.FormatTurtle, export.FormatNTriples, export.FormatJSONLD} {
		t.Run(string(format), func(t *testing.T) {
			first, err := export.Export(sampleGraph(), format)
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := export.Export(sampleGraph(), format)
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestExport_Errors(t *testing.T) {
	_, err := export.Export(sampleGraph(), "rdfxml")
	assert.Error(t, err)

	_, err = export.ToTurtle(nil)
	assert.Error(t, err)
	_, err = export.ToJSONLD(nil)
	assert.Error(t, err)

	b := graph.NewBuilder(prefixes())
	b.Add(graph.SectionClasses, "https://example.org/bad iri", owl.RDFType, graph.IRI(owl.ClassClass))
	_, err = export.ToNTriples(b.Build())
	assert.Error(t, err)
	_, err = export.ToJSONLD(b.Build())
	assert.Error(t, err)
}

func TestTurtle_UncompactableIRI(t *testing.T) {
	b := graph.NewBuilder(prefixes())
	b.Add(graph.SectionClasses, ns+"A", owl.RDFSSeeAlso, graph.IRI("https://example.org/docs/a.html?x=1"))
	out, err := export.ToTurtle(b.Build())
	require.NoError(t, err)
	assert.Contains(t, string(out), "onto:A rdfs:seeAlso <https://example.org/docs/a.html?x=1> .")
}

func TestEmptyList(t *testing.T) {
	b := graph.NewBuilder(prefixes())
	b.Add(graph.SectionClasses, ns+"Empty", owl.PropOneOf, graph.List())
	g := b.Build()

	ttl, err := export.ToTurtle(g)
	require.NoError(t, err)
	assert.Contains(t, string(ttl), "owl:oneOf ( )")

	nt, err := export.ToNTriples(g)
	require.NoError(t, err)
	assert.Contains(t, string(nt), "<http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .")
}
