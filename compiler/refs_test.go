package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefs_Parse(t *testing.T) {
	refs := NewRefs(testBase, testOptions().Prefixes)

	tests := []struct {
		name    string
		ref     string
		wantIRI string
		wantID  string
		wantErr string
	}{
		{name: "bare id", ref: "Processor", wantIRI: testBase + "Processor", wantID: "Processor"},
		{name: "surrounding space", ref: " Processor ", wantIRI: testBase + "Processor", wantID: "Processor"},
		{name: "known prefix", ref: "eurio:Project", wantIRI: "http://data.europa.eu/s66#Project"},
		{name: "prefix case", ref: "XSD:string", wantIRI: "http://www.w3.org/2001/XMLSchema#string"},
		{name: "base prefix is local", ref: "onto:Processor", wantIRI: testBase + "Processor", wantID: "Processor"},
		{name: "absolute iri", ref: "http://schema.org/Person", wantIRI: "http://schema.org/Person"},
		{name: "absolute base iri is local", ref: testBase + "DieSize", wantIRI: testBase + "DieSize", wantID: "DieSize"},
		{name: "urn", ref: "urn:isbn:123", wantIRI: "urn:isbn:123"},
		{name: "unknown prefix", ref: "foo:Bar", wantErr: `unknown prefix "foo"`},
		{name: "empty", ref: "  ", wantErr: "empty reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := refs.Parse(tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIRI, ref.IRI)
			assert.Equal(t, tt.wantID, ref.ID)
			assert.Equal(t, tt.wantID != "", ref.Local())
		})
	}
}
