package compiler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/model"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// baseProperty describes a global measurement property.
type baseProperty struct {
	rng     string
	label   model.LangMap
	comment model.LangMap
}

var (
	baseValueProperty = baseProperty{
		rng:     owl.XSDDecimal,
		label:   model.LangMap{"en": "has numeric value", "fr": "a valeur numérique"},
		comment: model.LangMap{"en": "Numeric value.", "fr": "Valeur numérique"},
	}
	baseUnitProperty = baseProperty{
		rng:     owl.XSDString,
		label:   model.LangMap{"en": "has unit", "fr": "a unité"},
		comment: model.LangMap{"en": "Unit of measurement.", "fr": "Unité de mesure"},
	}
)

// Assemble builds the ontology graph from resolved records and the
// synthesized measurement properties.
func Assemble(res *Resolution, syn *Synthesis, opts Options) (*graph.Graph, error) {
	opts = opts.withDefaults()
	if syn == nil {
		syn = &Synthesis{Measurements: map[string]Measurement{}}
	}
	a := &assembler{
		res:  res,
		syn:  syn,
		opts: opts,
		b:    graph.NewBuilder(opts.Prefixes),
	}

	a.ontology()
	a.classes()
	a.properties()
	a.baseProperties()
	a.synthesized()
	if err := a.instances(); err != nil {
		return nil, err
	}
	return a.b.Build(), nil
}

type assembler struct {
	res  *Resolution
	syn  *Synthesis
	opts Options
	b    *graph.Builder
}

func (a *assembler) ontology() {
	iri := a.opts.OntologyIRI()
	a.b.Add(graph.SectionOntology, iri, owl.RDFType, graph.IRI(owl.ClassOntology))
	if a.opts.OntologyLabel != "" {
		a.b.Add(graph.SectionOntology, iri, owl.RDFSLabel, graph.Literal(a.opts.OntologyLabel))
	}
	if a.opts.OntologyVersion != "" {
		a.b.Add(graph.SectionOntology, iri, owl.PropVersionInfo, graph.Literal(a.opts.OntologyVersion))
	}
}

func (a *assembler) classes() {
	rs := a.res.Records
	for _, id := range rs.ClassIDs() {
		c := rs.Classes[id]
		iri := a.res.refs.IRI(id)
		add := func(predicate string, object graph.Term) {
			a.b.Add(graph.SectionClasses, iri, predicate, object)
		}

		add(owl.RDFType, graph.IRI(owl.ClassClass))
		if c.ParentClass != "" {
			add(owl.RDFSSubClassOf, graph.IRI(a.res.IRI(c.ParentClass)))
		} else {
			add(owl.RDFSSubClassOf, graph.IRI(owl.ClassThing))
		}
		if c.Equivalent != "" {
			add(owl.PropEquivalentClass, graph.IRI(a.res.IRI(c.Equivalent)))
		}
		if len(c.OneOf) > 0 {
			members := lo.Map(c.OneOf, func(m string, _ int) graph.Term { return graph.IRI(a.res.IRI(m)) })
			add(owl.PropEquivalentClass, graph.Blank(
				graph.PO(owl.RDFType, graph.IRI(owl.ClassClass)),
				graph.PO(owl.PropOneOf, graph.List(members...)),
			))
		}
		for _, r := range c.Restrictions {
			add(owl.RDFSSubClassOf, a.restriction(r))
		}
		if c.Cardinality != nil {
			add(owl.PropEquivalentClass, graph.Blank(
				graph.PO(owl.RDFType, graph.IRI(owl.ClassClass)),
				graph.PO(owl.PropIntersectionOf, graph.List(graph.IRI(iri), a.cardinality(c.Cardinality))),
			))
		}
		if m, ok := a.syn.Measurements[id]; ok {
			add(owl.RDFSSubClassOf, exactlyOne(a.res.refs.IRI(m.Value)))
			add(owl.RDFSSubClassOf, exactlyOne(a.res.refs.IRI(m.Unit)))
		}
		if c.LinkHTML != "" {
			add(owl.RDFSSeeAlso, graph.IRI(c.LinkHTML))
		}
		a.labels(graph.SectionClasses, iri, c.PrefLabel, c.Comment)
	}
}

// restriction builds an anonymous owl:Restriction superclass.
func (a *assembler) restriction(r model.ClassRestriction) graph.Term {
	pairs := []graph.PredicateObject{
		graph.PO(owl.RDFType, graph.IRI(owl.ClassRestriction)),
		graph.PO(owl.PropOnProperty, graph.IRI(a.res.IRI(r.Property))),
	}
	switch {
	case r.SomeValuesFrom != "":
		pairs = append(pairs, graph.PO(owl.PropSomeValuesFrom, graph.IRI(a.res.IRI(r.SomeValuesFrom))))
	case r.AllValuesFrom != "":
		pairs = append(pairs, graph.PO(owl.PropAllValuesFrom, graph.IRI(a.res.IRI(r.AllValuesFrom))))
	case r.HasValue != "":
		pairs = append(pairs, graph.PO(owl.PropHasValue, graph.IRI(a.res.IRI(r.HasValue))))
	}
	return graph.Blank(pairs...)
}

// cardinality builds the restriction half of a cardinality intersection.
// With on_class the qualified forms are used.
func (a *assembler) cardinality(card *model.Cardinality) graph.Term {
	pairs := []graph.PredicateObject{
		graph.PO(owl.RDFType, graph.IRI(owl.ClassRestriction)),
		graph.PO(owl.PropOnProperty, graph.IRI(a.res.IRI(card.Property))),
	}
	qualified := card.OnClass != ""
	bound := func(plain, qual string, n int) {
		p := plain
		if qualified {
			p = qual
		}
		pairs = append(pairs, graph.PO(p, nonNegative(n)))
	}

	if card.Exactly != nil {
		bound(owl.PropCardinality, owl.PropQualifiedCardinality, *card.Exactly)
	} else {
		if card.Min != nil {
			bound(owl.PropMinCardinality, owl.PropMinQualifiedCardinality, *card.Min)
		}
		if card.Max != nil {
			bound(owl.PropMaxCardinality, owl.PropMaxQualifiedCardinality, *card.Max)
		}
	}
	if qualified {
		pairs = append(pairs, graph.PO(owl.PropOnClass, graph.IRI(a.res.IRI(card.OnClass))))
	}
	return graph.Blank(pairs...)
}

func (a *assembler) properties() {
	rs := a.res.Records
	for _, id := range rs.PropertyIDs() {
		p := rs.Properties[id]
		iri := a.res.refs.IRI(id)

		section, typ := graph.SectionObjectProperties, owl.ClassObjectProperty
		rng := a.res.IRI(p.Range)
		if p.PropertyType == model.DatatypeProperty {
			section, typ = graph.SectionDatatypeProperties, owl.ClassDatatypeProperty
			if scalar, ok := a.opts.Scalars.Lookup(p.Range); ok {
				rng = scalar
			}
		}

		a.b.Add(section, iri, owl.RDFType, graph.IRI(typ))
		for _, d := range p.Domain {
			a.b.Add(section, iri, owl.RDFSDomain, graph.IRI(a.res.IRI(d)))
		}
		a.b.Add(section, iri, owl.RDFSRange, graph.IRI(rng))
		a.labels(section, iri, p.PrefLabel, p.Comment)
	}
}

func (a *assembler) baseProperties() {
	if !a.opts.BaseProperties {
		return
	}
	for id, bp := range map[string]baseProperty{
		a.opts.ValueProperty: baseValueProperty,
		a.opts.UnitProperty:  baseUnitProperty,
	} {
		iri := a.res.refs.IRI(id)
		a.b.Add(graph.SectionDatatypeProperties, iri, owl.RDFType, graph.IRI(owl.ClassDatatypeProperty))
		a.b.Add(graph.SectionDatatypeProperties, iri, owl.RDFSRange, graph.IRI(bp.rng))
		a.labels(graph.SectionDatatypeProperties, iri, bp.label, bp.comment)
	}
}

func (a *assembler) synthesized() {
	for _, sp := range a.syn.Properties {
		iri := a.res.refs.IRI(sp.ID)
		add := func(predicate string, object graph.Term) {
			a.b.Add(graph.SectionDatatypeProperties, iri, predicate, object)
		}

		super := a.opts.ValueProperty
		if sp.Role == RoleUnit {
			super = a.opts.UnitProperty
		}

		add(owl.RDFType, graph.IRI(owl.ClassDatatypeProperty))
		add(owl.RDFSSubPropertyOf, graph.IRI(a.res.refs.IRI(super)))
		add(owl.RDFSDomain, graph.IRI(a.res.refs.IRI(sp.Class)))
		if len(sp.Units) > 0 {
			units := lo.Map(sp.Units, func(u string, _ int) graph.Term { return graph.Literal(u) })
			add(owl.RDFSRange, graph.Blank(
				graph.PO(owl.RDFType, graph.IRI(owl.RDFSDatatype)),
				graph.PO(owl.PropOneOf, graph.List(units...)),
			))
		} else {
			add(owl.RDFSRange, graph.IRI(sp.Range))
		}
		a.labels(graph.SectionDatatypeProperties, iri, nil, sp.Spec.Comment)
	}
}

func (a *assembler) instances() error {
	rs := a.res.Records
	for _, id := range rs.InstanceIDs() {
		inst := rs.Instances[id]
		iri := a.res.refs.IRI(id)
		add := func(predicate string, object graph.Term) {
			a.b.Add(graph.SectionInstances, iri, predicate, object)
		}

		add(owl.RDFType, graph.IRI(owl.ClassNamedIndividual))
		for _, ct := range inst.ClassType {
			add(owl.RDFType, graph.IRI(a.res.IRI(ct)))
		}
		a.labels(graph.SectionInstances, iri, inst.PrefLabel, inst.Comment)

		for _, key := range sortedKeys(inst.Properties) {
			predicate := a.res.IRI(key)
			values, ok := inst.Properties[key].([]any)
			if !ok {
				values = []any{inst.Properties[key]}
			}
			for _, v := range values {
				term, err := a.value(key, v)
				if err != nil {
					return &model.MalformedRecordError{
						Source:   inst.Source,
						Kind:     model.KindInstances,
						RecordID: id,
						Field:    "properties." + key,
						Reason:   err.Error(),
					}
				}
				add(predicate, term)
			}
		}
	}
	return nil
}

// value converts an instance property value to an object term. Values of
// a declared ObjectProperty are references and values of a DatatypeProperty
// are literals. For external properties, strings that name a resource
// become IRIs and everything else becomes a literal.
func (a *assembler) value(property string, v any) (graph.Term, error) {
	kind, rng := a.propertyKind(property)
	switch kind {
	case model.ObjectProperty:
		ref, ok := v.(string)
		if !ok {
			return graph.Term{}, fmt.Errorf("object property value %v is not a reference", v)
		}
		return graph.IRI(a.res.IRI(ref)), nil
	case model.DatatypeProperty:
		if val, ok := v.(string); ok {
			return graph.TypedLiteral(val, rng), nil
		}
		return literal(v)
	}

	if val, ok := v.(string); ok {
		if ref, err := a.res.refs.Parse(val); err == nil && !strings.ContainsAny(val, " \t\n") {
			if !ref.Local() || a.res.Declared(ref.ID) {
				return graph.IRI(ref.IRI), nil
			}
		}
	}
	return literal(v)
}

// propertyKind returns the kind of a local property and, for datatype
// properties, the range string values are typed with. External
// properties return an empty kind.
func (a *assembler) propertyKind(property string) (model.PropertyType, string) {
	id := a.res.LocalID(property)
	if id == "" {
		return "", ""
	}
	if p, ok := a.res.Records.Properties[id]; ok {
		if p.PropertyType == model.ObjectProperty {
			return model.ObjectProperty, ""
		}
		rng, _ := a.opts.Scalars.Lookup(p.Range)
		if rng == owl.RDFSLiteral {
			rng = ""
		}
		return model.DatatypeProperty, rng
	}
	for _, sp := range a.syn.Properties {
		if sp.ID == id {
			return model.DatatypeProperty, sp.Range
		}
	}
	if a.opts.BaseProperties {
		switch id {
		case a.opts.ValueProperty:
			return model.DatatypeProperty, baseValueProperty.rng
		case a.opts.UnitProperty:
			return model.DatatypeProperty, baseUnitProperty.rng
		}
	}
	return "", ""
}

// literal converts a scalar JSON value to a literal term.
func literal(v any) (graph.Term, error) {
	switch val := v.(type) {
	case string:
		return graph.Literal(val), nil
	case json.Number:
		return numberLiteral(val.String()), nil
	case float64:
		return graph.TypedLiteral(strconv.FormatFloat(val, 'g', -1, 64), owl.XSDDouble), nil
	case bool:
		return graph.TypedLiteral(strconv.FormatBool(val), owl.XSDBoolean), nil
	}
	return graph.Term{}, fmt.Errorf("unsupported value %v", v)
}

// numberLiteral types a JSON number by its lexical form.
func numberLiteral(s string) graph.Term {
	switch {
	case strings.ContainsAny(s, "eE"):
		return graph.TypedLiteral(s, owl.XSDDouble)
	case strings.Contains(s, "."):
		return graph.TypedLiteral(s, owl.XSDDecimal)
	}
	return graph.TypedLiteral(s, owl.XSDInteger)
}

func (a *assembler) labels(section graph.Section, iri string, label, comment model.LangMap) {
	for _, lang := range label.Languages() {
		a.b.Add(section, iri, owl.SKOSPrefLabel, graph.LangLiteral(label[lang], lang))
	}
	for _, lang := range comment.Languages() {
		a.b.Add(section, iri, owl.RDFSComment, graph.LangLiteral(comment[lang], lang))
	}
}

// exactlyOne is the cardinality 1 restriction placed on measurement classes.
func exactlyOne(property string) graph.Term {
	return graph.Blank(
		graph.PO(owl.RDFType, graph.IRI(owl.ClassRestriction)),
		graph.PO(owl.PropOnProperty, graph.IRI(property)),
		graph.PO(owl.PropCardinality, nonNegative(1)),
	)
}

func nonNegative(n int) graph.Term {
	return graph.TypedLiteral(strconv.Itoa(n), owl.XSDNonNegativeInteger)
}
