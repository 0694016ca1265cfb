package civics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSlugFor(t *testing.T) {
	cases := map[string]string{
		"Cincinnati, OH": "cincinnati",
		"cincinnati-oh":  "cincinnati",
		"Cincinnati":     "cincinnati",
		"  Blue Ash, OH": "blueash",
		"covington ky":   "covington",
	}
	for input, want := range cases {
		require.Equal(t, want, slugFor(input), "input %q", input)
	}
}

func TestStore_UnknownJurisdiction(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())

	_, err := store.Index("nowhere")
	require.ErrorIs(t, err, entity.ErrJurisdictionNotFound)
}

func TestStore_CachesAcrossCalls(t *testing.T) {
	root := writeRulesFixture(t, "cincinnati", cincinnatiIndex(), cincinnatiTopics())
	store := NewStore(root, zap.NewNop())

	index, err := store.Index("cincinnati")
	require.NoError(t, err)
	require.Equal(t, "cincinnati-oh", index.Jurisdiction)

	// removing the files must not evict the cached copy
	require.NoError(t, os.RemoveAll(filepath.Join(root, "cincinnati")))

	index, err = store.Index("Cincinnati, OH")
	require.NoError(t, err)
	require.Len(t, index.Topics, 3)

	store.Flush()
	_, err = store.Index("cincinnati")
	require.ErrorIs(t, err, entity.ErrJurisdictionNotFound)
}

func TestStore_TopicData(t *testing.T) {
	root := writeRulesFixture(t, "cincinnati", cincinnatiIndex(), cincinnatiTopics())
	store := NewStore(root, zap.NewNop())

	data, ok := store.TopicData("cincinnati", "noise")
	require.True(t, ok)
	require.Equal(t, "10 PM to 7 AM", data["quiet_hours"])

	_, ok = store.TopicData("cincinnati", "parking")
	require.False(t, ok, "topic with a missing detail file must not resolve")
}

func TestStore_AvailableJurisdictions(t *testing.T) {
	root := writeRulesFixture(t, "cincinnati", cincinnatiIndex(), cincinnatiTopics())
	// a directory without index.json is ignored
	require.NoError(t, os.MkdirAll(filepath.Join(root, "drafts"), 0o755))

	store := NewStore(root, zap.NewNop())
	require.Equal(t, []string{"cincinnati-oh"}, store.AvailableJurisdictions())
}
