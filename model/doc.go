// Package model defines the declarative records contributors write by hand
// and the errors raised while checking them.
//
// Four record kinds exist, one kind per source file:
//   - ClassRecord: a concept, optionally under a parent class
//   - PropertyRecord: an ObjectProperty or DatatypeProperty with domain and range
//   - InstanceRecord: a canonical, named member of a class
//   - RestrictionSpec: shorthand declaring a class a value/unit measurement
//
// Records are decoded once, checked with Validate, collected into a
// RecordSet and never mutated afterwards.
package model
