package dotpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	obj := map[string]any{
		"name": "Cincinnati",
		"collection": map[string]any{
			"schedule": "Weekly",
			"fees": map[string]any{
				"bulk_item": float64(15),
			},
		},
	}

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"name", "Cincinnati", true},
		{"collection.schedule", "Weekly", true},
		{"collection.fees.bulk_item", float64(15), true},
		{"collection.missing", nil, false},
		{"missing", nil, false},
		{"name.deeper", nil, false}, // scalar mid-path
		{"collection", map[string]any{"schedule": "Weekly", "fees": map[string]any{"bulk_item": float64(15)}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, found := Lookup(obj, tc.path)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLookupNilMap(t *testing.T) {
	_, found := Lookup(nil, "anything")
	require.False(t, found)
}
