package model

import (
	"fmt"
	"strings"
)

// MalformedRecordError reports a record that violates the JSON convention:
// a required field is missing or a value has the wrong shape.
type MalformedRecordError struct {
	Source   string
	Kind     Kind
	RecordID string
	// Index is the 1-based position of the record in its file, 0 if unknown.
	Index  int
	Field  string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed ")
	if e.Kind != "" {
		sb.WriteString(e.Kind.Singular())
		sb.WriteString(" ")
	}
	sb.WriteString("record")
	switch {
	case e.RecordID != "":
		fmt.Fprintf(&sb, " %q", e.RecordID)
	case e.Index > 0:
		fmt.Fprintf(&sb, " #%d", e.Index)
	}
	if e.Source != "" {
		fmt.Fprintf(&sb, " in %s", e.Source)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, ": %s", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&sb, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// DuplicateIdError reports two records sharing an identifier. Classes,
// properties and instances share one namespace.
type DuplicateIdError struct {
	ID          string
	Kind        Kind
	Source      string
	FirstKind   Kind
	FirstSource string
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("duplicate id %q: declared in %s (%s) and again in %s (%s)",
		e.ID, e.FirstSource, e.FirstKind, e.Source, e.Kind)
}

// UnresolvedReferenceError reports a reference to a class or record that
// is not declared anywhere in the corpus, or that names a record of the
// wrong kind.
type UnresolvedReferenceError struct {
	Source   string
	RecordID string
	Field    string
	Target   string
	// Reason overrides the default "which is not declared".
	Reason string
}

func (e *UnresolvedReferenceError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "which is not declared"
	}
	return fmt.Sprintf("unresolved reference in %s: %q.%s refers to %q, %s",
		e.Source, e.RecordID, e.Field, e.Target, reason)
}

// CyclicHierarchyError reports a class that is its own ancestor. Path
// starts and ends with the same class.
type CyclicHierarchyError struct {
	Path   []string
	Source string
}

func (e *CyclicHierarchyError) Error() string {
	msg := "cyclic class hierarchy: " + strings.Join(e.Path, " -> ")
	if e.Source != "" {
		msg += " (in " + e.Source + ")"
	}
	return msg
}

// InvalidPropertyTypeError reports a property whose type is unknown or
// whose range does not match its type.
type InvalidPropertyTypeError struct {
	Source       string
	PropertyID   string
	PropertyType PropertyType
	Range        string
	Reason       string
}

func (e *InvalidPropertyTypeError) Error() string {
	return fmt.Sprintf("invalid property %q in %s: type %q with range %q: %s",
		e.PropertyID, e.Source, e.PropertyType, e.Range, e.Reason)
}

// RestrictionConflictError reports an ambiguous value/unit restriction.
type RestrictionConflictError struct {
	Source    string
	ClassName string
	Reason    string
}

func (e *RestrictionConflictError) Error() string {
	return fmt.Sprintf("conflicting measurement restriction on %q in %s: %s", e.ClassName, e.Source, e.Reason)
}
