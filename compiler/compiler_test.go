package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontoc/export"
	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/model"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

func TestCompiler_Compile(t *testing.T) {
	c := New(testOptions(), nil, nil)
	result, err := c.Compile(context.Background(), newCorpus().records(t))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Classes)
	assert.Equal(t, 3, result.Stats.Properties)
	assert.Equal(t, 2, result.Stats.Instances)
	assert.Equal(t, 1, result.Stats.Restrictions)
	assert.Equal(t, 2, result.Stats.Synthesized)
	assert.Equal(t, result.Graph.Len(), result.Stats.Triples)
	assert.Positive(t, result.Stats.Triples)
}

func TestCompiler_StageErrorsAreWrapped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *corpus)
		prefix string
		target any
	}{
		{
			name:   "resolve",
			mutate: func(c *corpus) { c.findClass("Processor").ParentClass = "Missing" },
			prefix: "resolve references: ",
			target: new(*model.UnresolvedReferenceError),
		},
		{
			name:   "validate",
			mutate: func(c *corpus) { c.properties[0].Range = "xsd:nope" },
			prefix: "validate properties: ",
			target: new(*model.InvalidPropertyTypeError),
		},
		{
			name: "synthesize",
			mutate: func(c *corpus) {
				c.restrictions = append(c.restrictions, dieSizeSpec())
			},
			prefix: "synthesize restrictions: ",
			target: new(*model.RestrictionConflictError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCorpus()
			tt.mutate(c)

			result, err := New(testOptions(), nil, nil).Compile(context.Background(), c.records(t))
			require.Error(t, err)
			assert.Nil(t, result, "no partial output")
			assert.Contains(t, err.Error(), tt.prefix)
			assert.True(t, errors.As(err, tt.target), "got %v", err)
		})
	}
}

func TestCompiler_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testOptions(), nil, nil).Compile(ctx, newCorpus().records(t))
	assert.ErrorIs(t, err, context.Canceled)
}

// reversed returns the corpus with every record list in reverse order,
// as if the manifest listed its sources the other way round.
func (c *corpus) reversed() *corpus {
	out := &corpus{}
	for i := len(c.classes) - 1; i >= 0; i-- {
		out.classes = append(out.classes, c.classes[i])
	}
	for i := len(c.properties) - 1; i >= 0; i-- {
		out.properties = append(out.properties, c.properties[i])
	}
	for i := len(c.instances) - 1; i >= 0; i-- {
		out.instances = append(out.instances, c.instances[i])
	}
	for i := len(c.restrictions) - 1; i >= 0; i-- {
		out.restrictions = append(out.restrictions, c.restrictions[i])
	}
	return out
}

func TestCompiler_DeterministicAcrossInputOrder(t *testing.T) {
	base := newCorpus()
	extra := &model.RestrictionSpec{
		ClassName:        "Processor",
		HasValueProperty: "hasClockValue",
		HasUnitProperty:  "hasClockUnit",
		UnitEnumeration:  []string{"GHz", "MHz"},
		Source:           "restrictions_clock.json",
	}
	base.restrictions = append(base.restrictions, extra)

	for _, format := range []export.Format{export.FormatTurtle, export.FormatNTriples} {
		t.Run(string(format), func(t *testing.T) {
			var outputs [][]byte
			for _, c := range []*corpus{base, base.reversed(), base} {
				result, err := New(testOptions(), nil, nil).Compile(context.Background(), c.records(t))
				require.NoError(t, err)
				out, err := export.Export(result.Graph, format)
				require.NoError(t, err)
				outputs = append(outputs, out)
			}
			assert.Equal(t, outputs[0], outputs[1])
			assert.Equal(t, outputs[0], outputs[2])
		})
	}
}

func processorDieSizeCorpus() *corpus {
	spec := dieSizeSpec()
	spec.UnitEnumeration = nil
	return &corpus{
		classes: []*model.ClassRecord{
			class("HPCResource", ""),
			class("PhysicalCharacteristic", ""),
			class("Processor", "HPCResource"),
			class("DieSize", "PhysicalCharacteristic"),
		},
		properties: []*model.PropertyRecord{
			property("hasDieSize", model.ObjectProperty, "Processor", "DieSize"),
		},
		restrictions: []*model.RestrictionSpec{spec},
	}
}

func TestCompiler_ProcessorDieSize(t *testing.T) {
	result, err := New(testOptions(), nil, nil).Compile(context.Background(), processorDieSizeCorpus().records(t))
	require.NoError(t, err)
	g := result.Graph

	iri := func(id string) graph.Term { return graph.IRI(testBase + id) }
	labels := func(id, what string) []graph.PredicateObject {
		return []graph.PredicateObject{
			graph.PO(owl.SKOSPrefLabel, graph.LangLiteral(id, "en")),
			graph.PO(owl.RDFSComment, graph.LangLiteral("The "+id+" "+what+".", "en")),
		}
	}

	tests := []struct {
		subject string
		want    []graph.PredicateObject
	}{
		{
			subject: "Processor",
			want: append([]graph.PredicateObject{
				graph.PO(owl.RDFType, graph.IRI(owl.ClassClass)),
				graph.PO(owl.RDFSSubClassOf, iri("HPCResource")),
			}, labels("Processor", "class")...),
		},
		{
			subject: "DieSize",
			want: append([]graph.PredicateObject{
				graph.PO(owl.RDFType, graph.IRI(owl.ClassClass)),
				graph.PO(owl.RDFSSubClassOf, iri("PhysicalCharacteristic")),
				graph.PO(owl.RDFSSubClassOf, exactlyOne(testBase+"hasDieSizeUnit")),
				graph.PO(owl.RDFSSubClassOf, exactlyOne(testBase+"hasDieSizeValue")),
			}, labels("DieSize", "class")...),
		},
		{
			subject: "hasDieSize",
			want: append([]graph.PredicateObject{
				graph.PO(owl.RDFType, graph.IRI(owl.ClassObjectProperty)),
				graph.PO(owl.RDFSDomain, iri("Processor")),
				graph.PO(owl.RDFSRange, iri("DieSize")),
			}, labels("hasDieSize", "property")...),
		},
		{
			subject: "hasDieSizeValue",
			want: []graph.PredicateObject{
				graph.PO(owl.RDFType, graph.IRI(owl.ClassDatatypeProperty)),
				graph.PO(owl.RDFSSubPropertyOf, iri("hasValue")),
				graph.PO(owl.RDFSDomain, iri("DieSize")),
				graph.PO(owl.RDFSRange, graph.IRI(owl.XSDDecimal)),
			},
		},
		{
			subject: "hasDieSizeUnit",
			want: []graph.PredicateObject{
				graph.PO(owl.RDFType, graph.IRI(owl.ClassDatatypeProperty)),
				graph.PO(owl.RDFSSubPropertyOf, iri("hasUnit")),
				graph.PO(owl.RDFSDomain, iri("DieSize")),
				graph.PO(owl.RDFSRange, graph.IRI(owl.XSDString)),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			s, ok := g.Subject(testBase + tt.subject)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Pairs)
		})
	}

	assert.Equal(t, 4, result.Stats.Classes)
	assert.Equal(t, 2, result.Stats.Synthesized)
}

func TestCompiler_ProcessorDieSizeNeedsDeclaredParents(t *testing.T) {
	c := processorDieSizeCorpus()
	c.classes = c.classes[2:]

	_, err := New(testOptions(), nil, nil).Compile(context.Background(), c.records(t))
	var unresolved *model.UnresolvedReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "DieSize", unresolved.RecordID)
	assert.Equal(t, "PhysicalCharacteristic", unresolved.Target)
}
