// Package source loads hand-written JSON record files listed in the
// manifest into a model.RecordSet.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/c360studio/ontoc/config"
	"github.com/c360studio/ontoc/model"
)

// Options tune how records are decoded and checked.
type Options struct {
	// DefaultLang tags bare-string labels and comments.
	DefaultLang string
	// RequireEnglish demands an "en" entry in every label and comment.
	RequireEnglish bool
	// StrictFields rejects unknown JSON fields.
	StrictFields bool
}

// OptionsFromConfig derives loader options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultLang:    cfg.DefaultLang,
		RequireEnglish: cfg.RequireEnglishEnabled(),
		StrictFields:   cfg.StrictFieldsEnabled(),
	}
}

// Loader reads every manifest source into one RecordSet.
type Loader struct {
	fsys   fs.FS
	dir    string
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader rooted at filesDir.
func NewLoader(filesDir string, opts Options, logger *slog.Logger) *Loader {
	return newLoader(os.DirFS(filesDir), filesDir, opts, logger)
}

func newLoader(fsys fs.FS, dir string, opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	return &Loader{fsys: fsys, dir: dir, opts: opts, logger: logger}
}

// Load resolves the manifest and reads each source in manifest order.
// Nothing is returned unless every file loads cleanly. Unregistered JSON
// files fail the load in strict mode and are logged otherwise.
func (l *Loader) Load(ctx context.Context, manifest config.Manifest) (*model.RecordSet, error) {
	resolved, err := resolveManifest(l.fsys, manifest.Sources)
	if err != nil {
		return nil, err
	}

	unregistered, err := findUnregistered(l.fsys, resolved)
	if err != nil {
		return nil, err
	}
	if len(unregistered) > 0 {
		if manifest.StrictEnabled() {
			return nil, &UnregisteredSourceError{Dir: l.dir, Paths: unregistered}
		}
		for _, name := range unregistered {
			l.logger.Warn("Skipping unregistered source", slog.String("source", name))
		}
	}

	rs := model.NewRecordSet()
	for _, src := range resolved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := l.loadFile(rs, src)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded source",
			slog.String("source", src.Name),
			slog.String("kind", string(src.Entry.Kind)),
			slog.Int("records", n))
	}

	l.logger.Info("Loaded records",
		slog.Int("sources", len(resolved)),
		slog.Int("classes", rs.Count(model.KindClasses)),
		slog.Int("properties", rs.Count(model.KindProperties)),
		slog.Int("instances", rs.Count(model.KindInstances)),
		slog.Int("restrictions", rs.Count(model.KindRestrictions)))

	return rs, nil
}

// loadFile decodes one source into rs and returns the number of records.
func (l *Loader) loadFile(rs *model.RecordSet, src ResolvedSource) (int, error) {
	data, err := fs.ReadFile(l.fsys, src.Name)
	if err != nil {
		return 0, fmt.Errorf("read source %s: %w", src.Name, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, &model.MalformedRecordError{
			Source: src.Name,
			Kind:   src.Entry.Kind,
			Reason: "file must be a JSON array of records",
			Err:    err,
		}
	}

	for i, raw := range items {
		if err := l.addRecord(rs, src, i+1, raw); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (l *Loader) addRecord(rs *model.RecordSet, src ResolvedSource, index int, raw json.RawMessage) error {
	vopts := model.ValidationOptions{RequireEnglish: l.opts.RequireEnglish}

	switch src.Entry.Kind {
	case model.KindClasses:
		var c model.ClassRecord
		if err := l.decode(raw, &c); err != nil {
			return l.malformed(src, index, raw, err)
		}
		c.Source = src.Name
		c.PrefLabel = c.PrefLabel.Normalize(l.opts.DefaultLang)
		c.Comment = c.Comment.Normalize(l.opts.DefaultLang)
		if c.ParentClass == "" && src.Entry.DefaultParent != "" {
			c.ParentClass = src.Entry.DefaultParent
			c.ParentFromDefault = true
		}
		if err := c.Validate(vopts); err != nil {
			return withIndex(err, index)
		}
		return rs.AddClass(&c)

	case model.KindProperties:
		var p model.PropertyRecord
		if err := l.decode(raw, &p); err != nil {
			return l.malformed(src, index, raw, err)
		}
		p.Source = src.Name
		p.PrefLabel = p.PrefLabel.Normalize(l.opts.DefaultLang)
		p.Comment = p.Comment.Normalize(l.opts.DefaultLang)
		if err := p.Validate(vopts); err != nil {
			return withIndex(err, index)
		}
		return rs.AddProperty(&p)

	case model.KindInstances:
		var inst model.InstanceRecord
		if err := l.decode(raw, &inst); err != nil {
			return l.malformed(src, index, raw, err)
		}
		inst.Source = src.Name
		inst.PrefLabel = inst.PrefLabel.Normalize(l.opts.DefaultLang)
		inst.Comment = inst.Comment.Normalize(l.opts.DefaultLang)
		if err := inst.Validate(vopts); err != nil {
			return withIndex(err, index)
		}
		return rs.AddInstance(&inst)

	case model.KindRestrictions:
		var r model.RestrictionSpec
		if err := l.decode(raw, &r); err != nil {
			return l.malformed(src, index, raw, err)
		}
		r.Source = src.Name
		r.Comment = r.Comment.Normalize(l.opts.DefaultLang)
		if err := r.Validate(vopts); err != nil {
			return withIndex(err, index)
		}
		rs.AddRestriction(&r)
		return nil
	}

	return fmt.Errorf("source %s: unknown kind %q", src.Name, src.Entry.Kind)
}

// decode unmarshals one record. Numbers stay json.Number so instance
// property values keep their lexical form.
func (l *Loader) decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if l.opts.StrictFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

func (l *Loader) malformed(src ResolvedSource, index int, raw json.RawMessage, err error) error {
	return &model.MalformedRecordError{
		Source:   src.Name,
		Kind:     src.Entry.Kind,
		RecordID: peekID(raw),
		Index:    index,
		Reason:   "cannot decode record",
		Err:      err,
	}
}

// peekID makes a best effort to name a record that failed to decode.
func peekID(raw json.RawMessage) string {
	var probe struct {
		ID           any `json:"id"`
		InstanceName any `json:"instance_name"`
		ClassName    any `json:"class_name"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	for _, v := range []any{probe.ID, probe.InstanceName, probe.ClassName} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func withIndex(err error, index int) error {
	var mre *model.MalformedRecordError
	if errors.As(err, &mre) && mre.Index == 0 {
		mre.Index = index
	}
	return err
}
