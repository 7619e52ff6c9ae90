// Package compiler turns a loaded RecordSet into an OWL ontology graph.
//
// Compilation is a single forward pipeline. Each stage either succeeds
// completely or returns a typed error from the model package, and no graph
// is produced unless every stage succeeds:
//
//	Resolve            references and the class hierarchy (UnresolvedReferenceError, CyclicHierarchyError)
//	ValidateProperties property type against range (InvalidPropertyTypeError)
//	Synthesize         value/unit properties for measurement classes (RestrictionConflictError)
//	Assemble           the immutable graph.Graph
//
// # References
//
// A bare identifier is local and must name a record in the corpus. An
// absolute IRI, or a prefixed name whose prefix is configured, is external
// and is emitted without being checked. A prefixed name with an unknown
// prefix is an error. Prefixed names that expand into the ontology's own
// namespace are treated as local.
//
// # Measurement classes
//
// A RestrictionSpec such as
//
//	{"class_name": "DieSize", "has_value_property": "hasDieSizeValue", "has_unit_property": "hasDieSizeUnit"}
//
// produces two DatatypeProperties scoped to DieSize, each a sub-property of
// the global hasValue/hasUnit, and two owl:cardinality 1 restrictions on
// DieSize so every instance carries exactly one value and one unit.
//
// # Usage
//
//	c := compiler.New(opts, logger, metrics)
//	result, err := c.Compile(ctx, records)
//	if err != nil {
//	    var cyc *model.CyclicHierarchyError
//	    if errors.As(err, &cyc) { ... }
//	}
//	data, err := export.ToTurtle(result.Graph)
package compiler
