package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"copyhound/models"
)

// MemoryStore ist ein In-Memory-RecordStore für Tests und lokale Läufe.
// Alle Zugriffe laufen über einen Mutex, Schreibzugriffe pro Schlüssel sind
// damit serialisiert.
type MemoryStore struct {
	mu      sync.Mutex
	records map[uint]*models.WorkRecord
	byKey   map[string]uint
	nextID  uint
}

// NewMemoryStore erstellt einen leeren In-Memory-Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uint]*models.WorkRecord),
		byKey:   make(map[string]uint),
	}
}

func recordKey(titleNormalized string, contentType models.ContentType) string {
	return titleNormalized + "\x00" + string(contentType)
}

func recordKeyOf(rec *models.WorkRecord) string {
	titleNormalized, contentType := rec.Key()
	return recordKey(titleNormalized, contentType)
}

func copyRecord(rec *models.WorkRecord) *models.WorkRecord {
	cp := *rec
	return &cp
}

func (m *MemoryStore) ByID(ctx context.Context, id uint) (*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *MemoryStore) ByKey(ctx context.Context, titleNormalized string, contentType models.ContentType) (*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[recordKey(titleNormalized, contentType)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(m.records[id]), nil
}

// sortedRecords liefert alle Datensätze in ID-Reihenfolge, damit Abfragen
// deterministisch bleiben.
func (m *MemoryStore) sortedRecords() []*models.WorkRecord {
	recs := make([]*models.WorkRecord, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func inGroup(group []models.ContentType, ct models.ContentType) bool {
	for _, g := range group {
		if g == ct {
			return true
		}
	}
	return false
}

func (m *MemoryStore) filter(contentType models.ContentType, limit int, match func(*models.WorkRecord) bool) []*models.WorkRecord {
	group := contentType.Group()
	var out []*models.WorkRecord
	for _, rec := range m.sortedRecords() {
		if group != nil && !inGroup(group, rec.ContentType) {
			continue
		}
		if !match(rec) {
			continue
		}
		out = append(out, copyRecord(rec))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (m *MemoryStore) ExactTitle(ctx context.Context, titleNormalized string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(contentType, limit, func(rec *models.WorkRecord) bool {
		return rec.TitleNormalized == titleNormalized
	}), nil
}

func (m *MemoryStore) TitleContains(ctx context.Context, substr string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(contentType, limit, func(rec *models.WorkRecord) bool {
		return strings.Contains(rec.TitleNormalized, substr)
	}), nil
}

func (m *MemoryStore) TitleContainsAny(ctx context.Context, words []string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	if len(words) == 0 {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(contentType, limit, func(rec *models.WorkRecord) bool {
		for _, w := range words {
			if strings.Contains(rec.TitleNormalized, w) {
				return true
			}
		}
		return false
	}), nil
}

func (m *MemoryStore) Sample(ctx context.Context, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(contentType, limit, func(*models.WorkRecord) bool { return true }), nil
}

func (m *MemoryStore) Stale(ctx context.Context, cutoff time.Time, limit int) ([]*models.WorkRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []*models.WorkRecord
	for _, rec := range m.sortedRecords() {
		if rec.LastVerifiedAt == nil || rec.LastVerifiedAt.Before(cutoff) {
			stale = append(stale, copyRecord(rec))
		}
	}
	// Nie geprüfte Datensätze zuerst, danach die ältesten.
	sort.SliceStable(stale, func(i, j int) bool {
		a, b := stale[i].LastVerifiedAt, stale[j].LastVerifiedAt
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.Before(*b)
	})
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (m *MemoryStore) Insert(ctx context.Context, rec *models.WorkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(rec)
}

func (m *MemoryStore) insertLocked(rec *models.WorkRecord) error {
	key := recordKeyOf(rec)
	if _, exists := m.byKey[key]; exists {
		return ErrDuplicateKey
	}
	m.nextID++
	rec.ID = m.nextID
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.records[rec.ID] = copyRecord(rec)
	m.byKey[key] = rec.ID
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, rec *models.WorkRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == 0 {
		return m.insertLocked(rec)
	}
	old, ok := m.records[rec.ID]
	if ok {
		delete(m.byKey, recordKeyOf(old))
	}
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = copyRecord(rec)
	m.byKey[recordKeyOf(rec)] = rec.ID
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

// Transaction führt fn auf einer Kopie des Bestands aus und übernimmt die
// Kopie nur bei Erfolg.
func (m *MemoryStore) Transaction(ctx context.Context, fn func(RecordStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &MemoryStore{
		records: make(map[uint]*models.WorkRecord, len(m.records)),
		byKey:   make(map[string]uint, len(m.byKey)),
		nextID:  m.nextID,
	}
	for id, rec := range m.records {
		tx.records[id] = copyRecord(rec)
	}
	for k, id := range m.byKey {
		tx.byKey[k] = id
	}

	if err := fn(tx); err != nil {
		return err
	}
	m.records = tx.records
	m.byKey = tx.byKey
	m.nextID = tx.nextID
	return nil
}

// MemorySearchLogStore ist das In-Memory-Gegenstück zum Suchprotokoll.
type MemorySearchLogStore struct {
	mu      sync.Mutex
	entries map[uint]*models.SearchLogEntry
	nextID  uint
}

// NewMemorySearchLogStore erstellt ein leeres In-Memory-Suchprotokoll.
func NewMemorySearchLogStore() *MemorySearchLogStore {
	return &MemorySearchLogStore{entries: make(map[uint]*models.SearchLogEntry)}
}

func (m *MemorySearchLogStore) Append(ctx context.Context, entry *models.SearchLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *MemorySearchLogStore) ByID(ctx context.Context, id uint) (*models.SearchLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (m *MemorySearchLogStore) Save(ctx context.Context, entry *models.SearchLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *MemorySearchLogStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if !e.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}
