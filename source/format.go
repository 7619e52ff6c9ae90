package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/c360studio/ontoc/config"
)

// leadingKeys fixes the position of well-known record fields. Other
// fields follow in sorted order.
var leadingKeys = []string{
	"id",
	"instance_name",
	"class_name",
	"parent_class",
	"property_type",
	"class_type",
	"domain",
	"range",
	"pref_label",
	"comment",
}

// FormattedSource is a registered source file and its canonical form.
type FormattedSource struct {
	// Name is relative to files_dir.
	Name string
	// Path is the file on disk.
	Path    string
	Data    []byte
	Changed bool
}

// FormatManifest computes the canonical form of every file the manifest
// registers, in manifest order. Nothing is written.
func FormatManifest(ctx context.Context, filesDir string, manifest config.Manifest) ([]FormattedSource, error) {
	fsys := os.DirFS(filesDir)
	resolved, err := resolveManifest(fsys, manifest.Sources)
	if err != nil {
		return nil, err
	}

	out := make([]FormattedSource, 0, len(resolved))
	for _, src := range resolved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, src.Name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src.Name, err)
		}
		formatted, err := FormatSource(data)
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", src.Name, err)
		}
		out = append(out, FormattedSource{
			Name:    src.Name,
			Path:    filepath.Join(filesDir, filepath.FromSlash(src.Name)),
			Data:    formatted,
			Changed: !bytes.Equal(data, formatted),
		})
	}
	return out, nil
}

// FormatSource rewrites a record array with two-space indentation, the
// leading fields first and every other object key sorted. Record order
// and values are kept; numbers keep their lexical form.
func FormatSource(data []byte) ([]byte, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("expected a JSON array of records: %w", err)
	}
	if len(records) == 0 {
		return []byte("[]\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, raw := range records {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("record %d: expected an object", i+1)
		}
		if err := writeRecord(&buf, fields); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if i < len(records)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		buf.WriteString("  {}")
		return nil
	}
	buf.WriteString("  {\n")
	for i, key := range recordKeys(fields) {
		value, err := indentValue(fields[key])
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		name, _ := json.Marshal(key)
		fmt.Fprintf(buf, "    %s: %s", name, value)
		if i < len(fields)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("  }")
	return nil
}

func recordKeys(fields map[string]json.RawMessage) []string {
	leading := lo.Filter(leadingKeys, func(k string, _ int) bool {
		_, ok := fields[k]
		return ok
	})
	rest := lo.Without(lo.Keys(fields), leadingKeys...)
	sort.Strings(rest)
	return append(leading, rest...)
}

// indentValue re-encodes a field value nested two levels deep. Object
// keys come out sorted.
func indentValue(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("    ", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
