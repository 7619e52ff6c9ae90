package owl

// Namespace IRIs of the W3C vocabularies.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceOWL  = "http://www.w3.org/2002/07/owl#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
	NamespaceSKOS = "http://www.w3.org/2004/02/skos/core#"
)

// RDF terms.
const (
	RDFType  = NamespaceRDF + "type"
	RDFFirst = NamespaceRDF + "first"
	RDFRest  = NamespaceRDF + "rest"
	RDFNil   = NamespaceRDF + "nil"
)

// RDFS terms.
const (
	RDFSClass         = NamespaceRDFS + "Class"
	RDFSDatatype      = NamespaceRDFS + "Datatype"
	RDFSLiteral       = NamespaceRDFS + "Literal"
	RDFSLabel         = NamespaceRDFS + "label"
	RDFSComment       = NamespaceRDFS + "comment"
	RDFSSeeAlso       = NamespaceRDFS + "seeAlso"
	RDFSSubClassOf    = NamespaceRDFS + "subClassOf"
	RDFSSubPropertyOf = NamespaceRDFS + "subPropertyOf"
	RDFSDomain        = NamespaceRDFS + "domain"
	RDFSRange         = NamespaceRDFS + "range"
)

// OWL class IRIs.
const (
	// ClassOntology types the ontology header node.
	ClassOntology = NamespaceOWL + "Ontology"

	// ClassClass types every declared class.
	ClassClass = NamespaceOWL + "Class"

	// ClassThing is the implicit root when a class has no parent.
	ClassThing = NamespaceOWL + "Thing"

	// ClassRestriction types anonymous property restrictions.
	ClassRestriction = NamespaceOWL + "Restriction"

	// ClassNamedIndividual types every declared instance.
	ClassNamedIndividual = NamespaceOWL + "NamedIndividual"

	// ClassObjectProperty links two classes.
	ClassObjectProperty = NamespaceOWL + "ObjectProperty"

	// ClassDatatypeProperty links a class to a literal.
	ClassDatatypeProperty = NamespaceOWL + "DatatypeProperty"
)

// OWL property IRIs.
const (
	PropEquivalentClass         = NamespaceOWL + "equivalentClass"
	PropOneOf                   = NamespaceOWL + "oneOf"
	PropIntersectionOf          = NamespaceOWL + "intersectionOf"
	PropOnProperty              = NamespaceOWL + "onProperty"
	PropOnClass                 = NamespaceOWL + "onClass"
	PropSomeValuesFrom          = NamespaceOWL + "someValuesFrom"
	PropAllValuesFrom           = NamespaceOWL + "allValuesFrom"
	PropHasValue                = NamespaceOWL + "hasValue"
	PropCardinality             = NamespaceOWL + "cardinality"
	PropMinCardinality          = NamespaceOWL + "minCardinality"
	PropMaxCardinality          = NamespaceOWL + "maxCardinality"
	PropQualifiedCardinality    = NamespaceOWL + "qualifiedCardinality"
	PropMinQualifiedCardinality = NamespaceOWL + "minQualifiedCardinality"
	PropMaxQualifiedCardinality = NamespaceOWL + "maxQualifiedCardinality"
	PropVersionInfo             = NamespaceOWL + "versionInfo"
)

// SKOS terms.
const (
	SKOSPrefLabel = NamespaceSKOS + "prefLabel"
)

// XSD datatype IRIs used directly by the compiler.
const (
	XSDString             = NamespaceXSD + "string"
	XSDInteger            = NamespaceXSD + "integer"
	XSDDecimal            = NamespaceXSD + "decimal"
	XSDDouble             = NamespaceXSD + "double"
	XSDBoolean            = NamespaceXSD + "boolean"
	XSDNonNegativeInteger = NamespaceXSD + "nonNegativeInteger"
)
