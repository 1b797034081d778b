package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyhound/models"
)

func makeRecord(title, titleNormalized string, ct models.ContentType) *models.WorkRecord {
	return &models.WorkRecord{
		Title:           title,
		TitleNormalized: titleNormalized,
		ContentType:     ct,
		CopyrightStatus: "unknown",
		DataConfidence:  0.5,
	}
}

func TestByKeyRoundTripsRecordKey(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := makeRecord("Moby Dick", "moby dick", models.TypeBook)
	require.NoError(t, s.Insert(ctx, rec))

	titleNormalized, contentType := rec.Key()
	got, err := s.ByKey(ctx, titleNormalized, contentType)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestMemoryStoreInsertAndLookup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := makeRecord("The Great Gatsby", "the great gatsby", models.TypeBook)
	require.NoError(t, s.Insert(ctx, rec))
	assert.NotZero(t, rec.ID)

	byID, err := s.ByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Great Gatsby", byID.Title)

	byKey, err := s.ByKey(ctx, "the great gatsby", models.TypeBook)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byKey.ID)

	_, err = s.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDuplicateKey(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, makeRecord("Moby Dick", "moby dick", models.TypeBook)))

	err := s.Insert(ctx, makeRecord("Moby Dick!", "moby dick", models.TypeBook))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Gleicher Titel, anderer Typ, ist ein eigener Schlüssel.
	require.NoError(t, s.Insert(ctx, makeRecord("Moby Dick", "moby dick", models.TypeFilm)))
}

func TestMemoryStoreReadsReturnCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := makeRecord("Moby Dick", "moby dick", models.TypeBook)
	require.NoError(t, s.Insert(ctx, rec))

	got, err := s.ByID(ctx, rec.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.ByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moby Dick", again.Title)
}

func TestMemoryStoreContentTypeGroupFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, makeRecord("gorm", "gorm", models.TypeSoftware)))
	require.NoError(t, s.Insert(ctx, makeRecord("gorm lib", "gorm lib", models.TypeLibrary)))
	require.NoError(t, s.Insert(ctx, makeRecord("Gorm the Book", "gorm the book", models.TypeBook)))

	// "software" trifft auch "library", aber kein Buch.
	results, err := s.TitleContains(ctx, "gorm", models.TypeSoftware, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, models.TypeBook, r.ContentType)
	}

	// Unbekannter Typ filtert nicht.
	all, err := s.TitleContains(ctx, "gorm", models.TypeUnknown, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreTitleContainsAny(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, makeRecord("The Great Gatsby", "the great gatsby", models.TypeBook)))
	require.NoError(t, s.Insert(ctx, makeRecord("Great Expectations", "great expectations", models.TypeBook)))
	require.NoError(t, s.Insert(ctx, makeRecord("Moby Dick", "moby dick", models.TypeBook)))

	results, err := s.TitleContainsAny(ctx, []string{"gatsby", "expectations"}, models.TypeUnknown, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	none, err := s.TitleContainsAny(ctx, nil, models.TypeUnknown, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreStaleOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	older := time.Now().Add(-96 * time.Hour)
	fresh := time.Now()

	never := makeRecord("Never Checked", "never checked", models.TypeBook)
	require.NoError(t, s.Insert(ctx, never))

	recOld := makeRecord("Old", "old", models.TypeBook)
	recOld.LastVerifiedAt = &old
	require.NoError(t, s.Insert(ctx, recOld))

	recOlder := makeRecord("Older", "older", models.TypeBook)
	recOlder.LastVerifiedAt = &older
	require.NoError(t, s.Insert(ctx, recOlder))

	recFresh := makeRecord("Fresh", "fresh", models.TypeBook)
	recFresh.LastVerifiedAt = &fresh
	require.NoError(t, s.Insert(ctx, recFresh))

	stale, err := s.Stale(ctx, time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 3)
	assert.Equal(t, "Never Checked", stale[0].Title)
	assert.Equal(t, "Older", stale[1].Title)
	assert.Equal(t, "Old", stale[2].Title)
}

func TestMemoryStoreTransactionCommit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx RecordStore) error {
		return tx.Insert(ctx, makeRecord("Moby Dick", "moby dick", models.TypeBook))
	})
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMemoryStoreTransactionRollback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, makeRecord("Existing", "existing", models.TypeBook)))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx RecordStore) error {
		if err := tx.Insert(ctx, makeRecord("Moby Dick", "moby dick", models.TypeBook)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = s.ByKey(ctx, "moby dick", models.TypeBook)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySearchLogStore(t *testing.T) {
	s := NewMemorySearchLogStore()
	ctx := context.Background()

	entry := &models.SearchLogEntry{QueryText: "harry poter", ResultCount: 3, WasSuccessful: true}
	require.NoError(t, s.Append(ctx, entry))
	require.NotZero(t, entry.ID)

	got, err := s.ByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "harry poter", got.QueryText)

	recordID := uint(42)
	got.SelectedRecordID = &recordID
	require.NoError(t, s.Save(ctx, got))

	again, err := s.ByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, again.SelectedRecordID)
	assert.EqualValues(t, 42, *again.SelectedRecordID)

	n, err := s.CountSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
