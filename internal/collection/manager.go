package collection

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/bandwire/internal/model"
)

// Clock supplies creation timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Snapshot is a point-in-time copy of the whole collection.
type Snapshot struct {
	Version  int64 // increases with every committed mutation
	LastID   int64 // highest id ever issued
	InitTime time.Time
	Bands    []model.Band
}

// Persister receives a snapshot after every committed mutation.
type Persister interface {
	Persist(snap Snapshot) error
}

// Info summarises the collection for the info command.
type Info struct {
	Type     string
	InitTime time.Time
	Size     int
	LastID   int64
}

// Manager is the single owner of the band collection.
type Manager struct {
	mu       sync.RWMutex
	bands    []model.Band
	version  int64
	initTime time.Time

	ids       *IDSource
	clock     Clock
	persister Persister
	logger    *slog.Logger

	persistMu        sync.Mutex
	persistedVersion int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for creation dates and the init time.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithPersister sets the snapshot sink.
func WithPersister(p Persister) Option {
	return func(m *Manager) { m.persister = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		bands: make([]model.Band, 0, 16),
		ids:   NewIDSource(),
		clock: SystemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.initTime = m.clock.Now().UTC()
	return m
}

// Restore replaces the collection with a persisted snapshot.
// Every band must pass stored validation and ids must be unique; on error the
// manager is left unchanged.
func (m *Manager) Restore(snap Snapshot) error {
	seen := make(map[int64]bool, len(snap.Bands))
	bands := make([]model.Band, 0, len(snap.Bands))
	maxID := snap.LastID
	for _, b := range snap.Bands {
		if err := b.ValidateStored(); err != nil {
			return fmt.Errorf("restore band %d: %w", b.ID, err)
		}
		if seen[b.ID] {
			return fmt.Errorf("restore band %d: %w", b.ID, ErrDuplicateID)
		}
		seen[b.ID] = true
		maxID = max(maxID, b.ID)
		bands = append(bands, b.Clone())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.bands = bands
	m.ids.AtLeast(maxID)
	if !snap.InitTime.IsZero() {
		m.initTime = snap.InitTime.UTC()
	}
	m.version = max(m.version, snap.Version)

	m.persistMu.Lock()
	m.persistedVersion = m.version
	m.persistMu.Unlock()
	return nil
}

// NextID draws a fresh id. The id is consumed even if never stored.
func (m *Manager) NextID() int64 {
	return m.ids.Next()
}

// Add validates b, assigns it a fresh id and creation date, and appends it.
func (m *Manager) Add(b model.Band) (model.Band, error) {
	b, err := prepare(b)
	if err != nil {
		return model.Band{}, err
	}

	m.mu.Lock()
	stored := m.insertLocked(b)
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return stored.Clone(), nil
}

// AddIfMax adds b only if it orders strictly after every stored band.
// An empty collection always accepts. The comparison and the insert happen
// under one lock, so no concurrent add can slip in between.
func (m *Manager) AddIfMax(b model.Band) (model.Band, bool, error) {
	b, err := prepare(b)
	if err != nil {
		return model.Band{}, false, err
	}

	m.mu.Lock()
	if top, ok := model.Max(m.bands); ok && model.CompareFields(b, top) <= 0 {
		m.mu.Unlock()
		return model.Band{}, false, nil
	}
	stored := m.insertLocked(b)
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return stored.Clone(), true, nil
}

// Update replaces the user fields of the band with the given id.
// The id and creation date are kept.
func (m *Manager) Update(id int64, b model.Band) (model.Band, error) {
	b, err := prepare(b)
	if err != nil {
		return model.Band{}, err
	}

	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return model.Band{}, fmt.Errorf("band %d: %w", id, ErrNotFound)
	}
	b.ID = id
	b.CreationDate = m.bands[idx].CreationDate
	m.bands[idx] = b
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return b.Clone(), nil
}

// RemoveByID deletes the band with the given id.
func (m *Manager) RemoveByID(id int64) (model.Band, error) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return model.Band{}, fmt.Errorf("band %d: %w", id, ErrNotFound)
	}
	removed := m.bands[idx]
	m.bands = append(m.bands[:idx], m.bands[idx+1:]...)
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return removed, nil
}

// RemoveLower deletes every band ordering strictly before b and returns them.
func (m *Manager) RemoveLower(b model.Band) ([]model.Band, error) {
	b, err := prepare(b)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	kept := make([]model.Band, 0, len(m.bands))
	var removed []model.Band
	for _, existing := range m.bands {
		if model.CompareFields(existing, b) < 0 {
			removed = append(removed, existing)
			continue
		}
		kept = append(kept, existing)
	}
	if len(removed) == 0 {
		m.mu.Unlock()
		return nil, nil
	}
	m.bands = kept
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return removed, nil
}

// Clear removes every band and returns how many were removed.
// The id counter is not reset.
func (m *Manager) Clear() int {
	m.mu.Lock()
	n := len(m.bands)
	if n == 0 {
		m.mu.Unlock()
		return 0
	}
	m.bands = make([]model.Band, 0, 16)
	snap := m.commitLocked()
	m.mu.Unlock()

	m.persist(snap)
	return n
}

// Get returns a copy of the band with the given id.
func (m *Manager) Get(id int64) (model.Band, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return model.Band{}, fmt.Errorf("band %d: %w", id, ErrNotFound)
	}
	return m.bands[idx].Clone(), nil
}

// All returns a snapshot of the collection in insertion order.
func (m *Manager) All() []model.Band {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.bands)
}

// Len returns the number of stored bands.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bands)
}

// Max returns the greatest band, or false when the collection is empty.
func (m *Manager) Max() (model.Band, bool) {
	snap := m.All()
	return model.Max(snap)
}

// Ascending returns a snapshot sorted by model.Compare.
func (m *Manager) Ascending() []model.Band {
	snap := m.All()
	model.SortAscending(snap)
	return snap
}

// FilterContainsName returns bands whose name contains substr,
// compared case-insensitively after NFC normalisation.
func (m *Manager) FilterContainsName(substr string) []model.Band {
	needle := foldName(substr)
	var out []model.Band
	for _, b := range m.All() {
		if strings.Contains(foldName(b.Name), needle) {
			out = append(out, b)
		}
	}
	return out
}

// SumAlbumsCount adds up AlbumsCount over the collection.
func (m *Manager) SumAlbumsCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, b := range m.bands {
		sum += b.AlbumsCount
	}
	return sum
}

// Info describes the collection.
func (m *Manager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Info{
		Type:     "[]model.Band",
		InitTime: m.initTime,
		Size:     len(m.bands),
		LastID:   m.ids.Current(),
	}
}

// Snapshot returns a versioned copy of the whole collection.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// insertLocked assigns identity to an already validated band and appends it.
func (m *Manager) insertLocked(b model.Band) model.Band {
	b.ID = m.ids.Next()
	b.CreationDate = m.clock.Now().UTC()
	m.bands = append(m.bands, b)
	return b
}

func (m *Manager) indexLocked(id int64) int {
	for i := range m.bands {
		if m.bands[i].ID == id {
			return i
		}
	}
	return -1
}

// commitLocked records a mutation and returns the snapshot to persist.
// Callers hold the write lock.
func (m *Manager) commitLocked() Snapshot {
	m.version++
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Version:  m.version,
		LastID:   m.ids.Current(),
		InitTime: m.initTime,
		Bands:    cloneAll(m.bands),
	}
}

func (m *Manager) persist(snap Snapshot) {
	if m.persister == nil {
		return
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if snap.Version <= m.persistedVersion {
		return
	}
	if err := m.persister.Persist(snap); err != nil {
		m.logger.Error("persist collection failed", "version", snap.Version, "error", err)
		return
	}
	m.persistedVersion = snap.Version
}

// prepare normalises and validates a client-supplied band.
// Identity fields are cleared; the manager assigns them.
func prepare(b model.Band) (model.Band, error) {
	b = b.Normalize()
	if err := b.Validate(); err != nil {
		return model.Band{}, err
	}
	b.ID = 0
	b.CreationDate = time.Time{}
	return b, nil
}

func cloneAll(bands []model.Band) []model.Band {
	out := make([]model.Band, len(bands))
	for i, b := range bands {
		out[i] = b.Clone()
	}
	return out
}

// foldName builds a fresh Caser per call; Casers are stateful and must not be shared.
func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
