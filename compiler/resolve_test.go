package compiler

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontoc/model"
)

func TestResolve_Corpus(t *testing.T) {
	res, err := Resolve(newCorpus().records(t), testOptions())
	require.NoError(t, err)

	assert.Equal(t, testBase+"Processor", res.IRI("Processor"))
	assert.Equal(t, "http://data.europa.eu/s66#Project", res.IRI("eurio:Project"))
	assert.Equal(t, "Processor", res.LocalID("onto:Processor"))
	assert.Empty(t, res.LocalID("eurio:Project"))

	assert.True(t, res.Declared("cpu1"))
	assert.True(t, res.Declared("hasValue"), "global value property")
	assert.True(t, res.Declared("hasDieSizeUnit"), "synthesized property")
	assert.False(t, res.Declared("AMD"))
}

func TestResolve_Unresolved(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *corpus)
		wantID    string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing parent",
			mutate:    func(c *corpus) { c.findClass("Processor").ParentClass = "Computer" },
			wantID:    "Processor",
			wantField: "parent_class",
			wantMsg:   "which is not declared",
		},
		{
			name: "missing default parent",
			mutate: func(c *corpus) {
				p := c.findClass("Processor")
				p.ParentClass = "Computer"
				p.ParentFromDefault = true
			},
			wantID:    "Processor",
			wantField: "parent_class (default_parent)",
		},
		{
			name:      "unknown prefix",
			mutate:    func(c *corpus) { c.findClass("Processor").Equivalent = "foo:Bar" },
			wantID:    "Processor",
			wantField: "equivalent",
			wantMsg:   `unknown prefix "foo"`,
		},
		{
			name:      "parent is an instance",
			mutate:    func(c *corpus) { c.findClass("Processor").ParentClass = "cpu1" },
			wantID:    "Processor",
			wantField: "parent_class",
			wantMsg:   "which is an instance, not a class",
		},
		{
			name:      "property domain",
			mutate:    func(c *corpus) { c.properties[0].Domain = model.StringList{"Processor", "Node"} },
			wantID:    "coreCount",
			wantField: "domain[1]",
		},
		{
			name:      "object range",
			mutate:    func(c *corpus) { c.properties[2].Range = "Die" },
			wantID:    "hasDieSize",
			wantField: "range",
		},
		{
			name:      "instance class",
			mutate:    func(c *corpus) { c.instances[0].ClassType = model.StringList{"CPU"} },
			wantID:    "cpu1",
			wantField: "class_type",
		},
		{
			name:      "instance property",
			mutate:    func(c *corpus) { c.instances[0].Properties["vendor"] = "AMD" },
			wantID:    "cpu1",
			wantField: "properties.vendor",
		},
		{
			name:      "object property value",
			mutate:    func(c *corpus) { c.instances[0].Properties["hasDieSize"] = "die9" },
			wantID:    "cpu1",
			wantField: "properties.hasDieSize",
		},
		{
			name:      "object property list item",
			mutate:    func(c *corpus) { c.instances[0].Properties["hasDieSize"] = []any{"die1", "die9"} },
			wantID:    "cpu1",
			wantField: "properties.hasDieSize[1]",
		},
		{
			name:      "object property value names a property",
			mutate:    func(c *corpus) { c.instances[0].Properties["hasDieSize"] = "coreCount" },
			wantID:    "cpu1",
			wantField: "properties.hasDieSize",
			wantMsg:   "which is a property, not an instance or a class",
		},
		{
			name:      "one_of member",
			mutate:    func(c *corpus) { c.findClass("Processor").OneOf = []string{"cpu1", "cpu2"} },
			wantID:    "Processor",
			wantField: "one_of[1]",
		},
		{
			name: "restriction filler",
			mutate: func(c *corpus) {
				c.findClass("Processor").Restrictions = []model.ClassRestriction{
					{Property: "hasDieSize", SomeValuesFrom: "Die"},
				}
			},
			wantID:    "Processor",
			wantField: "restrictions[0].some_values_from",
		},
		{
			name: "cardinality on_class",
			mutate: func(c *corpus) {
				one := 1
				c.findClass("Processor").Cardinality = &model.Cardinality{Property: "hasDieSize", OnClass: "Die", Exactly: &one}
			},
			wantID:    "Processor",
			wantField: "cardinality.on_class",
		},
		{
			name:      "restriction class",
			mutate:    func(c *corpus) { c.restrictions[0].ClassName = "Die" },
			wantID:    "Die",
			wantField: "class_name",
		},
		{
			name:      "restriction on external class",
			mutate:    func(c *corpus) { c.restrictions[0].ClassName = "eurio:Project" },
			wantID:    "eurio:Project",
			wantField: "class_name",
			wantMsg:   "not a class declared in this ontology",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCorpus()
			tt.mutate(c)

			_, err := Resolve(c.records(t), testOptions())
			require.Error(t, err)

			var unresolved *model.UnresolvedReferenceError
			require.True(t, errors.As(err, &unresolved), "got %T: %v", err, err)
			assert.Equal(t, tt.wantID, unresolved.RecordID)
			assert.Equal(t, tt.wantField, unresolved.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestResolve_ObjectPropertyTakesReferences(t *testing.T) {
	c := newCorpus()
	c.instances[0].Properties["hasDieSize"] = json.Number("7")

	_, err := Resolve(c.records(t), testOptions())
	var malformed *model.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "cpu1", malformed.RecordID)
	assert.Equal(t, "properties.hasDieSize", malformed.Field)
}

func TestResolve_ExternalReferences(t *testing.T) {
	c := newCorpus()
	c.findClass("Processor").Equivalent = "eurio:Processor"
	c.findClass("DieSize").ParentClass = "http://qudt.org/schema/qudt/Quantity"
	c.properties[2].Range = "eurio:Component"

	_, err := Resolve(c.records(t), testOptions())
	require.NoError(t, err)
}

func TestResolve_Cycles(t *testing.T) {
	tests := []struct {
		name     string
		classes  []*model.ClassRecord
		wantPath []string
	}{
		{
			name:     "two classes",
			classes:  []*model.ClassRecord{class("A", "B"), class("B", "A")},
			wantPath: []string{"A", "B", "A"},
		},
		{
			name:     "self parent",
			classes:  []*model.ClassRecord{class("A", "A")},
			wantPath: []string{"A", "A"},
		},
		{
			name:     "cycle below a root",
			classes:  []*model.ClassRecord{class("Root", ""), class("X", "Z"), class("Y", "X"), class("Z", "Y"), class("W", "Z")},
			wantPath: []string{"Z", "Y", "X", "Z"},
		},
		{
			name:     "prefixed parent",
			classes:  []*model.ClassRecord{class("A", "onto:B"), class("B", "A")},
			wantPath: []string{"A", "B", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &corpus{classes: tt.classes}
			_, err := Resolve(c.records(t), testOptions())
			require.Error(t, err)

			var cyclic *model.CyclicHierarchyError
			require.True(t, errors.As(err, &cyclic), "got %T: %v", err, err)
			assert.Equal(t, tt.wantPath, cyclic.Path)
		})
	}
}

func TestResolve_DeepHierarchy(t *testing.T) {
	c := &corpus{classes: []*model.ClassRecord{class("C0", "")}}
	for i := 1; i < 500; i++ {
		c.classes = append(c.classes, class("C"+strconv.Itoa(i), "C"+strconv.Itoa(i-1)))
	}
	_, err := Resolve(c.records(t), testOptions())
	require.NoError(t, err)
}
