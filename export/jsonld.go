package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// JSONLDDocument is a JSON-LD document with the prefixes as its context
// and one node per subject.
type JSONLDDocument struct {
	Context map[string]string `json:"@context"`
	Graph   []JSONLDNode      `json:"@graph"`
}

// JSONLDNode is one node object. Keys are "@id", "@type" and compacted
// predicate IRIs; encoding/json writes them sorted.
type JSONLDNode map[string]any

// JSONLDWriter builds a JSON-LD document from graph subjects.
type JSONLDWriter struct {
	prefixes owl.PrefixMap
	doc      JSONLDDocument
}

// NewJSONLDWriter creates a writer whose context declares prefixes.
func NewJSONLDWriter(prefixes owl.PrefixMap) *JSONLDWriter {
	if prefixes == nil {
		prefixes = owl.DefaultPrefixes()
	}
	ctx := make(map[string]string, len(prefixes))
	for prefix, ns := range prefixes {
		ctx[prefix] = ns
	}
	return &JSONLDWriter{
		prefixes: prefixes,
		doc:      JSONLDDocument{Context: ctx, Graph: make([]JSONLDNode, 0)},
	}
}

// AddSubject appends a node for s.
func (w *JSONLDWriter) AddSubject(s graph.Subject) error {
	if err := checkIRI(s.IRI); err != nil {
		return err
	}
	node, err := w.node(s.Pairs)
	if err != nil {
		return err
	}
	node["@id"] = w.iri(s.IRI)
	w.doc.Graph = append(w.doc.Graph, node)
	return nil
}

// Bytes returns the indented document.
func (w *JSONLDWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.doc); err != nil {
		return nil, fmt.Errorf("export: encode json-ld: %w", err)
	}
	return buf.Bytes(), nil
}

// node builds a node object from pairs. IRI objects of rdf:type become
// "@type"; values of one predicate keep their graph order.
func (w *JSONLDWriter) node(pairs []graph.PredicateObject) (JSONLDNode, error) {
	node := make(JSONLDNode)
	var types []string
	for _, po := range pairs {
		if err := checkIRI(po.Predicate); err != nil {
			return nil, err
		}
		if po.Predicate == owl.RDFType && po.Object.Kind == graph.KindIRI {
			types = append(types, w.iri(po.Object.Value))
			continue
		}
		v, err := w.value(po.Object)
		if err != nil {
			return nil, err
		}
		key := w.iri(po.Predicate)
		values, _ := node[key].([]any)
		node[key] = append(values, v)
	}
	if len(types) > 0 {
		node["@type"] = types
	}
	return node, nil
}

func (w *JSONLDWriter) value(t graph.Term) (any, error) {
	switch t.Kind {
	case graph.KindIRI:
		if err := checkIRI(t.Value); err != nil {
			return nil, err
		}
		return map[string]string{"@id": w.iri(t.Value)}, nil
	case graph.KindLiteral:
		v := map[string]string{"@value": t.Value}
		switch {
		case t.Lang != "":
			v["@language"] = t.Lang
		case t.Datatype != "":
			v["@type"] = w.iri(t.Datatype)
		}
		return v, nil
	case graph.KindList:
		items := make([]any, 0, len(t.Items))
		for _, item := range t.Items {
			v, err := w.value(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return map[string]any{"@list": items}, nil
	case graph.KindBlank:
		return w.node(t.Pairs)
	}
	return nil, fmt.Errorf("export: unknown term kind %d", t.Kind)
}

func (w *JSONLDWriter) iri(iri string) string {
	if curie, ok := w.prefixes.Compact(iri); ok {
		return curie
	}
	return iri
}

// ToJSONLD serializes to JSON-LD with a prefix context. Nodes follow the
// graph's subject order and blank nodes are embedded.
func ToJSONLD(g *graph.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("export: nil graph")
	}
	w := NewJSONLDWriter(g.Prefixes())
	for _, s := range g.Subjects() {
		if err := w.AddSubject(s); err != nil {
			return nil, err
		}
	}
	return w.Bytes()
}
