package mindmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkmap/internal/db"
)

func TestSnapshotRoundTrip(t *testing.T) {
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "inkmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	m, err := d.CreateMap("Trip")
	require.NoError(t, err)

	res, err := ComputePositions(sampleTree(), "")
	require.NoError(t, err)
	saved := res.Nodes
	saved[1].IsNew = true
	saved[2].Selected = true

	require.NoError(t, SaveSnapshot(d, m.ID, saved))

	loaded, err := SnapshotFromDB(d, m.ID)
	require.NoError(t, err)
	require.Len(t, loaded, len(saved))
	for i := range saved {
		assert.Equal(t, saved[i].ID, loaded[i].ID)
		assert.Equal(t, saved[i].Label, loaded[i].Label)
		assert.Equal(t, saved[i].ParentID, loaded[i].ParentID)
		assert.Equal(t, saved[i].Direction, loaded[i].Direction)
		assert.Equal(t, saved[i].Position, loaded[i].Position)
		assert.Equal(t, saved[i].IsNew, loaded[i].IsNew)
		assert.False(t, loaded[i].Selected)
	}
	assert.NoError(t, Validate(loaded))
}

func TestSaveSnapshot_UnknownMap(t *testing.T) {
	d, err := db.OpenDB(filepath.Join(t.TempDir(), "inkmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	err = SaveSnapshot(d, "missing", sampleTree())
	assert.ErrorIs(t, err, db.ErrMapNotFound)
}
