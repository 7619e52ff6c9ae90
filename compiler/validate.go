package compiler

import (
	"fmt"
	"strings"

	"github.com/c360studio/ontoc/model"
)

// ValidateProperties checks that each property's type agrees with its
// range: object properties range over classes, datatype properties over
// scalar types. It runs after Resolve, so class-valued ranges are known
// to exist.
func ValidateProperties(res *Resolution, opts Options) error {
	opts = opts.withDefaults()
	rs := res.Records

	for _, id := range rs.PropertyIDs() {
		p := rs.Properties[id]
		invalid := func(reason string) error {
			return &model.InvalidPropertyTypeError{
				Source:       p.Source,
				PropertyID:   id,
				PropertyType: p.PropertyType,
				Range:        p.Range,
				Reason:       reason,
			}
		}

		switch p.PropertyType {
		case model.ObjectProperty:
			if _, ok := opts.Scalars.Lookup(p.Range); ok {
				return invalid("an ObjectProperty must range over a class, not a scalar type")
			}

		case model.DatatypeProperty:
			if _, ok := opts.Scalars.Lookup(p.Range); ok {
				continue
			}
			if local := res.LocalID(p.Range); local != "" && rs.HasClass(local) {
				return invalid("a DatatypeProperty must range over a scalar type, not a class")
			}
			return invalid(fmt.Sprintf("not a supported scalar type (valid: %s)", strings.Join(opts.Scalars.Tags(), ", ")))

		default:
			return invalid(fmt.Sprintf("property_type must be %s or %s", model.ObjectProperty, model.DatatypeProperty))
		}
	}
	return nil
}
