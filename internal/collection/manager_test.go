package collection

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/testutil"
)

func newBand(name string, participants, albums int64) model.Band {
	return model.Band{
		Name:                 name,
		Coordinates:          model.Coordinates{X: 1, Y: 1},
		NumberOfParticipants: participants,
		AlbumsCount:          albums,
	}
}

func newTestManager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithClock(testutil.NewStepClock())}, opts...)...)
}

// recordingPersister keeps every snapshot it receives.
type recordingPersister struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (p *recordingPersister) Persist(snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.snaps = append(p.snaps, snap)
	return nil
}

func (p *recordingPersister) last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snaps[len(p.snaps)-1]
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

func TestAdd_AssignsIdentity(t *testing.T) {
	m := newTestManager()

	in := newBand("  Can ", 5, 11)
	in.ID = 99
	in.CreationDate = time.Unix(0, 0)

	stored, err := m.Add(in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID, "client-supplied id is ignored")
	assert.Equal(t, testutil.DefaultClockStart.Add(time.Second), stored.CreationDate)
	assert.Equal(t, "Can", stored.Name)

	second, err := m.Add(newBand("Neu!", 2, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, m.Len())
}

func TestAdd_InvalidLeavesCollectionUnchanged(t *testing.T) {
	m := newTestManager()
	_, err := m.Add(newBand("Can", 5, 11))
	require.NoError(t, err)

	_, err = m.Add(newBand("", 1, 1))
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
	assert.Equal(t, 1, m.Len())

	next, err := m.Add(newBand("Neu!", 2, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID, "rejected bands do not consume ids")
}

func TestRemoveByID(t *testing.T) {
	m := newTestManager()
	a, _ := m.Add(newBand("a", 1, 1))
	b, _ := m.Add(newBand("b", 1, 1))

	removed, err := m.RemoveByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Name)

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestRemoveByID_Missing(t *testing.T) {
	m := newTestManager()
	_, _ = m.Add(newBand("a", 1, 1))

	_, err := m.RemoveByID(42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 1, m.Len())
}

func TestIDsNeverReused(t *testing.T) {
	m := newTestManager()
	a, _ := m.Add(newBand("a", 1, 1))
	b, _ := m.Add(newBand("b", 1, 1))
	_, err := m.RemoveByID(b.ID)
	require.NoError(t, err)
	m.Clear()

	c, err := m.Add(newBand("c", 1, 1))
	require.NoError(t, err)
	assert.Greater(t, c.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestUpdate(t *testing.T) {
	m := newTestManager()
	orig, _ := m.Add(newBand("a", 1, 1))

	updated, err := m.Update(orig.ID, newBand("renamed", 3, 7))
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.CreationDate, updated.CreationDate)
	assert.Equal(t, "renamed", updated.Name)

	got, err := m.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_Errors(t *testing.T) {
	m := newTestManager()
	orig, _ := m.Add(newBand("a", 1, 1))

	_, err := m.Update(99, newBand("b", 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Update(orig.ID, newBand("b", 0, 1))
	assert.True(t, model.IsValidationError(err))

	got, _ := m.Get(orig.ID)
	assert.Equal(t, "a", got.Name, "failed update leaves band unchanged")
}

func TestRemoveLower(t *testing.T) {
	m := newTestManager()
	_, _ = m.Add(newBand("small", 1, 1))
	_, _ = m.Add(newBand("medium", 3, 1))
	_, _ = m.Add(newBand("large", 9, 1))

	removed, err := m.RemoveLower(newBand("pivot", 3, 1))
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "small", removed[0].Name)
	assert.Equal(t, 2, m.Len())

	removed, err = m.RemoveLower(newBand("tiny", 1, 1))
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = m.RemoveLower(newBand("", 1, 1))
	assert.True(t, model.IsValidationError(err))
}

func TestAddIfMax(t *testing.T) {
	m := newTestManager()

	_, added, err := m.AddIfMax(newBand("first", 2, 2))
	require.NoError(t, err)
	assert.True(t, added, "empty collection accepts")

	_, added, err = m.AddIfMax(newBand("first", 2, 2))
	require.NoError(t, err)
	assert.False(t, added, "an equal band is not greater")

	_, added, err = m.AddIfMax(newBand("smaller", 1, 9))
	require.NoError(t, err)
	assert.False(t, added)

	stored, added, err := m.AddIfMax(newBand("bigger", 3, 1))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, int64(2), stored.ID)
	assert.Equal(t, 2, m.Len())

	_, _, err = m.AddIfMax(newBand("bad", -1, 1))
	assert.True(t, model.IsValidationError(err))
	assert.Equal(t, 2, m.Len())
}

func TestClear(t *testing.T) {
	m := newTestManager()
	assert.Equal(t, 0, m.Clear())

	_, _ = m.Add(newBand("a", 1, 1))
	_, _ = m.Add(newBand("b", 1, 1))
	assert.Equal(t, 2, m.Clear())
	assert.Equal(t, 0, m.Len())
}

func TestQueries(t *testing.T) {
	m := newTestManager()
	_, _ = m.Add(newBand("Joy Division", 4, 2))
	_, _ = m.Add(newBand("New Order", 4, 10))
	_, _ = m.Add(newBand("JOYRIDE", 1, 3))

	top, ok := m.Max()
	require.True(t, ok)
	assert.Equal(t, "New Order", top.Name)

	var names []string
	for _, b := range m.Ascending() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"JOYRIDE", "Joy Division", "New Order"}, names)

	matches := m.FilterContainsName("joy")
	assert.Len(t, matches, 2)
	assert.Empty(t, m.FilterContainsName("xyz"))

	assert.Equal(t, int64(15), m.SumAlbumsCount())

	info := m.Info()
	assert.Equal(t, 3, info.Size)
	assert.Equal(t, int64(3), info.LastID)
	assert.Equal(t, testutil.DefaultClockStart, info.InitTime)
}

func TestFilterContainsName_Unicode(t *testing.T) {
	m := newTestManager()
	_, _ = m.Add(newBand("Mo\u0308torhead", 3, 22))
	_, _ = m.Add(newBand("STRASSE", 1, 1))

	assert.Len(t, m.FilterContainsName("M\u00d6TOR"), 1, "NFC and case folding")
	assert.Len(t, m.FilterContainsName("stra\u00dfe"), 1, "full case folding")
}

func TestSnapshotIsolation(t *testing.T) {
	m := newTestManager()
	b := newBand("a", 1, 1)
	b.BestAlbum = &model.Album{Name: "x", Length: 1}
	_, _ = m.Add(b)

	snap := m.All()
	snap[0].Name = "mutated"
	snap[0].BestAlbum.Name = "mutated"

	got := m.All()
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "x", got[0].BestAlbum.Name)
}

func TestConcurrentAdds(t *testing.T) {
	m := newTestManager()

	const n = 200
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := m.Add(newBand(fmt.Sprintf("band-%d", i), 1, 1))
			if err == nil {
				ids <- b.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, m.Len())
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	m := newTestManager()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b, err := m.Add(newBand(fmt.Sprintf("b%d", i), int64(i+1), 1))
			if err == nil && i%2 == 0 {
				_, _ = m.RemoveByID(b.ID)
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = m.Ascending()
			_ = m.SumAlbumsCount()
			_ = m.FilterContainsName("b")
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, m.Len())
}

func TestPersister_ReceivesSnapshots(t *testing.T) {
	p := &recordingPersister{}
	m := newTestManager(WithPersister(p))

	a, _ := m.Add(newBand("a", 1, 1))
	_, _ = m.Add(newBand("b", 1, 1))
	_, _ = m.RemoveByID(a.ID)
	_, _ = m.Add(newBand("", 1, 1)) // rejected: no snapshot
	_, _ = m.RemoveByID(999)        // not found: no snapshot

	require.Equal(t, 3, p.count())
	last := p.last()
	assert.Equal(t, int64(3), last.Version)
	assert.Equal(t, int64(2), last.LastID)
	require.Len(t, last.Bands, 1)
	assert.Equal(t, "b", last.Bands[0].Name)
}

func TestPersister_ConcurrentVersionsIncrease(t *testing.T) {
	p := &recordingPersister{}
	m := newTestManager(WithPersister(p))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Add(newBand("x", 1, 1))
		}()
	}
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 1; i < len(p.snaps); i++ {
		assert.Greater(t, p.snaps[i].Version, p.snaps[i-1].Version)
	}
	assert.Len(t, p.snaps[len(p.snaps)-1].Bands, 50)
}

func TestPersister_FailureKeepsMutation(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	m := newTestManager(WithPersister(p))

	_, err := m.Add(newBand("a", 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestRestore(t *testing.T) {
	stored := newBand("a", 1, 1)
	stored.ID = 7
	stored.CreationDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	init := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	m := newTestManager()
	require.NoError(t, m.Restore(Snapshot{Version: 4, LastID: 9, InitTime: init, Bands: []model.Band{stored}}))

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, init, m.Info().InitTime)
	assert.Equal(t, int64(4), m.Snapshot().Version)

	next, err := m.Add(newBand("b", 1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(10), next.ID)
}

func TestRestore_Rejects(t *testing.T) {
	valid := newBand("a", 1, 1)
	valid.ID = 1
	valid.CreationDate = time.Now()

	invalid := valid
	invalid.Name = ""

	m := newTestManager()
	_, _ = m.Add(newBand("kept", 1, 1))

	err := m.Restore(Snapshot{Bands: []model.Band{valid, valid}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = m.Restore(Snapshot{Bands: []model.Band{invalid}})
	assert.True(t, model.IsValidationError(err))

	assert.Equal(t, 1, m.Len(), "failed restore leaves manager unchanged")
	assert.Equal(t, "kept", m.All()[0].Name)
}
