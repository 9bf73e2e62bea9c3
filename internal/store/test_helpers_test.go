package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/bandwire/internal/model"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBand creates a stored band with every field populated.
func createTestBand(id int64, name string) model.Band {
	return model.Band{
		ID:                   id,
		Name:                 name,
		Coordinates:          model.Coordinates{X: 12, Y: -3.25},
		CreationDate:         time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC),
		NumberOfParticipants: 4,
		AlbumsCount:          9,
		Genre:                model.GenrePostPunk,
		BestAlbum:            &model.Album{Name: "Closer", Length: 2664},
	}
}
