package compiler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontoc/model"
)

const testBase = "https://example.org/hpc#"

func testOptions() Options {
	opts := DefaultOptions(testBase)
	opts.Prefixes.Bind("eurio", "http://data.europa.eu/s66#")
	opts.OntologyLabel = "HPC ontology"
	opts.OntologyVersion = "1.0"
	return opts
}

func text(en string) model.LangMap {
	return model.LangMap{"en": en}
}

func class(id, parent string) *model.ClassRecord {
	return &model.ClassRecord{
		ID:          id,
		ParentClass: parent,
		PrefLabel:   text(id),
		Comment:     text("The " + id + " class."),
		Source:      "classes.json",
	}
}

func property(id string, typ model.PropertyType, domain, rng string) *model.PropertyRecord {
	return &model.PropertyRecord{
		ID:           id,
		PropertyType: typ,
		Domain:       model.StringList{domain},
		Range:        rng,
		PrefLabel:    text(id),
		Comment:      text("The " + id + " property."),
		Source:       "properties.json",
	}
}

func instance(id string, classes ...string) *model.InstanceRecord {
	return &model.InstanceRecord{
		InstanceName: id,
		ClassType:    classes,
		PrefLabel:    text(id),
		Comment:      text("The " + id + " instance."),
		Source:       "instances.json",
	}
}

func dieSizeSpec() *model.RestrictionSpec {
	return &model.RestrictionSpec{
		ClassName:        "DieSize",
		HasValueProperty: "hasDieSizeValue",
		HasUnitProperty:  "hasDieSizeUnit",
		UnitEnumeration:  []string{"mm", "cm"},
		Source:           "restrictions.json",
	}
}

// corpus is a small HPC ontology with one measurement class.
type corpus struct {
	classes      []*model.ClassRecord
	properties   []*model.PropertyRecord
	instances    []*model.InstanceRecord
	restrictions []*model.RestrictionSpec
}

func newCorpus() *corpus {
	cpu := instance("cpu1", "Processor")
	cpu.Properties = map[string]any{
		"coreCount":    json.Number("64"),
		"hasDieSize":   "die1",
		"manufacturer": "AMD",
	}
	die := instance("die1", "DieSize")
	die.Properties = map[string]any{
		"hasDieSizeValue": json.Number("7.5"),
		"hasDieSizeUnit":  "mm",
	}
	return &corpus{
		classes: []*model.ClassRecord{
			class("HPCResource", ""),
			class("Processor", "HPCResource"),
			class("DieSize", ""),
		},
		properties: []*model.PropertyRecord{
			property("coreCount", model.DatatypeProperty, "Processor", "xsd:integer"),
			property("manufacturer", model.DatatypeProperty, "Processor", "xsd:string"),
			property("hasDieSize", model.ObjectProperty, "Processor", "DieSize"),
		},
		instances:    []*model.InstanceRecord{cpu, die},
		restrictions: []*model.RestrictionSpec{dieSizeSpec()},
	}
}

func (c *corpus) records(t *testing.T) *model.RecordSet {
	t.Helper()
	rs := model.NewRecordSet()
	for _, r := range c.classes {
		require.NoError(t, rs.AddClass(r))
	}
	for _, r := range c.properties {
		require.NoError(t, rs.AddProperty(r))
	}
	for _, r := range c.instances {
		require.NoError(t, rs.AddInstance(r))
	}
	for _, r := range c.restrictions {
		rs.AddRestriction(r)
	}
	return rs
}

func (c *corpus) findClass(id string) *model.ClassRecord {
	for _, r := range c.classes {
		if r.ID == id {
			return r
		}
	}
	return nil
}
