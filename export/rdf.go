// Package export serializes a compiled ontology graph to Turtle,
// N-Triples and JSON-LD. Output depends only on the graph: the same graph always
// produces the same bytes.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/c360studio/ontoc/graph"
	"github.com/c360studio/ontoc/vocabulary/owl"
)

// Serializer turns a graph into a document.
type Serializer interface {
	Serialize(g *graph.Graph) ([]byte, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(g *graph.Graph) ([]byte, error)

// Serialize calls f.
func (f SerializerFunc) Serialize(g *graph.Graph) ([]byte, error) { return f(g) }

// NewSerializer returns the serializer for format.
func NewSerializer(format Format) (Serializer, error) {
	switch format {
	case FormatTurtle:
		return SerializerFunc(ToTurtle), nil
	case FormatNTriples:
		return SerializerFunc(ToNTriples), nil
	case FormatJSONLD:
		return SerializerFunc(ToJSONLD), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Export serializes g to the specified format.
func Export(g *graph.Graph, format Format) ([]byte, error) {
	s, err := NewSerializer(format)
	if err != nil {
		return nil, err
	}
	return s.Serialize(g)
}

// ToTurtle serializes to Turtle. Prefixes are sorted, subjects are grouped
// by section and blank nodes are written inline.
func ToTurtle(g *graph.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("export: nil graph")
	}
	w := NewTurtleWriter(g.Prefixes())
	w.WritePrefixes()

	section := graph.Section(-1)
	for _, s := range g.Subjects() {
		if s.Section != section {
			section = s.Section
			w.WriteSectionHeader(section.String())
		}
		if err := w.WriteSubject(s); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// ToNTriples serializes to N-Triples. Blank nodes are labelled _:b0, _:b1
// and so on in the order they are reached.
func ToNTriples(g *graph.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("export: nil graph")
	}
	w := NewNTriplesWriter()
	for _, s := range g.Subjects() {
		if err := checkIRI(s.IRI); err != nil {
			return nil, err
		}
		for _, po := range s.Pairs {
			if err := w.WriteTriple("<"+s.IRI+">", po.Predicate, po.Object); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// checkIRI rejects characters that cannot appear between < and >.
func checkIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("export: empty IRI")
	}
	for _, r := range iri {
		if r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r) {
			return fmt.Errorf("export: IRI %q contains %q", iri, r)
		}
	}
	return nil
}

// TurtleWriter writes RDF in Turtle format.
type TurtleWriter struct {
	prefixes owl.PrefixMap
	buf      bytes.Buffer
}

// NewTurtleWriter creates a Turtle writer that compacts IRIs with prefixes.
func NewTurtleWriter(prefixes owl.PrefixMap) *TurtleWriter {
	if prefixes == nil {
		prefixes = owl.DefaultPrefixes()
	}
	return &TurtleWriter{prefixes: prefixes}
}

// WritePrefixes writes prefix declarations.
func (w *TurtleWriter) WritePrefixes() {
	// Sort prefixes for consistent output
	for _, prefix := range w.prefixes.Sorted() {
		fmt.Fprintf(&w.buf, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
}

// WriteSectionHeader writes a comment line separating groups of subjects.
func (w *TurtleWriter) WriteSectionHeader(title string) {
	fmt.Fprintf(&w.buf, "\n#\n# %s\n#\n", title)
}

// WriteSubject writes a subject block. Objects sharing a predicate are
// written as an object list.
func (w *TurtleWriter) WriteSubject(s graph.Subject) error {
	subj, err := w.iri(s.IRI)
	if err != nil {
		return err
	}
	w.buf.WriteString("\n")
	w.buf.WriteString(subj)

	for i, po := range s.Pairs {
		obj, err := w.object(po.Object)
		if err != nil {
			return err
		}
		if i > 0 && s.Pairs[i-1].Predicate == po.Predicate {
			w.buf.WriteString(",\n        ")
			w.buf.WriteString(obj)
			continue
		}
		pred, err := w.predicate(po.Predicate)
		if err != nil {
			return err
		}
		if i == 0 {
			w.buf.WriteString(" ")
		} else {
			w.buf.WriteString(" ;\n    ")
		}
		w.buf.WriteString(pred + " " + obj)
	}
	w.buf.WriteString(" .\n")
	return nil
}

// Bytes returns the accumulated Turtle output.
func (w *TurtleWriter) Bytes() []byte {
	return append([]byte(nil), w.buf.Bytes()...)
}

// String returns the accumulated Turtle output.
func (w *TurtleWriter) String() string {
	return w.buf.String()
}

func (w *TurtleWriter) predicate(iri string) (string, error) {
	if iri == owl.RDFType {
		return "a", nil
	}
	return w.iri(iri)
}

func (w *TurtleWriter) iri(iri string) (string, error) {
	if curie, ok := w.prefixes.Compact(iri); ok {
		return curie, nil
	}
	if err := checkIRI(iri); err != nil {
		return "", err
	}
	return "<" + iri + ">", nil
}

// object formats a term for Turtle output.
func (w *TurtleWriter) object(t graph.Term) (string, error) {
	switch t.Kind {
	case graph.KindIRI:
		return w.iri(t.Value)
	case graph.KindLiteral:
		lit := "\"" + escapeString(t.Value) + "\""
		switch {
		case t.Lang != "":
			lit += "@" + t.Lang
		case t.Datatype != "":
			dt, err := w.iri(t.Datatype)
			if err != nil {
				return "", err
			}
			lit += "^^" + dt
		}
		return lit, nil
	case graph.KindList:
		parts := make([]string, 0, len(t.Items)+2)
		parts = append(parts, "(")
		for _, item := range t.Items {
			s, err := w.object(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		parts = append(parts, ")")
		return strings.Join(parts, " "), nil
	case graph.KindBlank:
		if len(t.Pairs) == 0 {
			return "[]", nil
		}
		parts := make([]string, 0, len(t.Pairs))
		for _, po := range t.Pairs {
			pred, err := w.predicate(po.Predicate)
			if err != nil {
				return "", err
			}
			obj, err := w.object(po.Object)
			if err != nil {
				return "", err
			}
			parts = append(parts, pred+" "+obj)
		}
		return "[ " + strings.Join(parts, " ; ") + " ]", nil
	}
	return "", fmt.Errorf("export: unknown term kind %d", t.Kind)
}

// NTriplesWriter writes RDF in N-Triples format.
type NTriplesWriter struct {
	buf    bytes.Buffer
	blanks int
}

// NewNTriplesWriter creates a new N-Triples writer.
func NewNTriplesWriter() *NTriplesWriter {
	return &NTriplesWriter{}
}

// WriteTriple writes a triple whose subject is already formatted (an
// <IRI> or a blank label). Nested blank nodes and lists are expanded into
// further triples after it.
func (w *NTriplesWriter) WriteTriple(subject, predicate string, object graph.Term) error {
	if err := checkIRI(predicate); err != nil {
		return err
	}

	var obj string
	var nested func() error

	switch object.Kind {
	case graph.KindIRI:
		if err := checkIRI(object.Value); err != nil {
			return err
		}
		obj = "<" + object.Value + ">"
	case graph.KindLiteral:
		obj = formatLiteralNTriples(object)
	case graph.KindBlank:
		label := w.newBlank()
		obj = label
		nested = func() error {
			for _, po := range object.Pairs {
				if err := w.WriteTriple(label, po.Predicate, po.Object); err != nil {
					return err
				}
			}
			return nil
		}
	case graph.KindList:
		if len(object.Items) == 0 {
			obj = "<" + owl.RDFNil + ">"
			break
		}
		head := w.newBlank()
		obj = head
		nested = func() error { return w.writeList(head, object.Items) }
	default:
		return fmt.Errorf("export: unknown term kind %d", object.Kind)
	}

	fmt.Fprintf(&w.buf, "%s <%s> %s .\n", subject, predicate, obj)
	if nested != nil {
		return nested()
	}
	return nil
}

func (w *NTriplesWriter) writeList(cell string, items []graph.Term) error {
	for i, item := range items {
		if err := w.WriteTriple(cell, owl.RDFFirst, item); err != nil {
			return err
		}
		if i == len(items)-1 {
			return w.WriteTriple(cell, owl.RDFRest, graph.IRI(owl.RDFNil))
		}
		next := w.newBlank()
		fmt.Fprintf(&w.buf, "%s <%s> %s .\n", cell, owl.RDFRest, next)
		cell = next
	}
	return nil
}

func (w *NTriplesWriter) newBlank() string {
	label := fmt.Sprintf("_:b%d", w.blanks)
	w.blanks++
	return label
}

// Bytes returns the accumulated N-Triples output.
func (w *NTriplesWriter) Bytes() []byte {
	return append([]byte(nil), w.buf.Bytes()...)
}

// String returns the accumulated N-Triples output.
func (w *NTriplesWriter) String() string {
	return w.buf.String()
}

// formatLiteralNTriples formats a literal for N-Triples output.
func formatLiteralNTriples(t graph.Term) string {
	lit := "\"" + escapeString(t.Value) + "\""
	switch {
	case t.Lang != "":
		return lit + "@" + t.Lang
	case t.Datatype != "":
		return lit + "^^<" + t.Datatype + ">"
	}
	return lit
}
