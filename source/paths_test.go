package source

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontoc/config"
	"github.com/c360studio/ontoc/model"
)

func corpusFS() fstest.MapFS {
	return fstest.MapFS{
		"main_classes.json":           {Data: []byte(`[]`)},
		"sub_HPC_classes.json":        {Data: []byte(`[]`)},
		"properties_workflow.json":    {Data: []byte(`[]`)},
		"properties_hpc.json":         {Data: []byte(`[]`)},
		"extra/instances_a.json":      {Data: []byte(`[]`)},
		"extra/deep/instances_b.json": {Data: []byte(`[]`)},
		"README.md":                   {Data: []byte(`notes`)},
	}
}

func TestResolveManifest(t *testing.T) {
	sources := []config.SourceEntry{
		{Path: "sub_HPC_classes.json", Kind: model.KindClasses, DefaultParent: "HPCResource"},
		{Path: "./main_classes.json", Kind: model.KindClasses},
		{Path: "properties_*.json", Kind: model.KindProperties},
		{Path: "extra/**/*.json", Kind: model.KindInstances},
	}

	resolved, err := resolveManifest(corpusFS(), sources)
	require.NoError(t, err)

	names := make([]string, len(resolved))
	for i, r := range resolved {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"sub_HPC_classes.json",
		"main_classes.json",
		"properties_hpc.json",
		"properties_workflow.json",
		"extra/deep/instances_b.json",
		"extra/instances_a.json",
	}, names)
	assert.Equal(t, "HPCResource", resolved[0].Entry.DefaultParent)
	assert.Equal(t, model.KindInstances, resolved[5].Entry.Kind)
}

func TestResolveManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sources []config.SourceEntry
		wantMsg string
	}{
		{
			name:    "missing file",
			sources: []config.SourceEntry{{Path: "nope.json", Kind: model.KindClasses}},
			wantMsg: "nope.json",
		},
		{
			name:    "glob without matches",
			sources: []config.SourceEntry{{Path: "restrictions_*.json", Kind: model.KindRestrictions}},
			wantMsg: "no files match pattern",
		},
		{
			name:    "directory",
			sources: []config.SourceEntry{{Path: "extra", Kind: model.KindInstances}},
			wantMsg: "is a directory",
		},
		{
			name: "file matched twice",
			sources: []config.SourceEntry{
				{Path: "properties_hpc.json", Kind: model.KindProperties},
				{Path: "properties_*.json", Kind: model.KindProperties},
			},
			wantMsg: "already matched by manifest.sources[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveManifest(corpusFS(), tt.sources)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFindUnregistered(t *testing.T) {
	resolved, err := resolveManifest(corpusFS(), []config.SourceEntry{
		{Path: "main_classes.json", Kind: model.KindClasses},
		{Path: "properties_*.json", Kind: model.KindProperties},
	})
	require.NoError(t, err)

	missing, err := findUnregistered(corpusFS(), resolved)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"extra/deep/instances_b.json",
		"extra/instances_a.json",
		"sub_HPC_classes.json",
	}, missing)
}

func TestContainsGlob(t *testing.T) {
	assert.True(t, containsGlob("properties_*.json"))
	assert.True(t, containsGlob("**/x.json"))
	assert.True(t, containsGlob("{a,b}.json"))
	assert.False(t, containsGlob("sub_HPC_classes.json"))
}
