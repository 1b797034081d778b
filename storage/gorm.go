package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"copyhound/models"
)

// GormStore ist die Postgres-Implementierung von RecordStore und
// SearchLogStore. Der eindeutige Index auf (title_normalized, content_type)
// serialisiert konkurrierende Schreibzugriffe pro Schlüssel.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore erstellt einen Store über der gegebenen gorm-Verbindung.
// Die Verbindung muss mit TranslateError geöffnet sein, damit
// Schlüsselkonflikte als ErrDuplicateKey gemeldet werden können.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ByID(ctx context.Context, id uint) (*models.WorkRecord, error) {
	var rec models.WorkRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) ByKey(ctx context.Context, titleNormalized string, contentType models.ContentType) (*models.WorkRecord, error) {
	var rec models.WorkRecord
	err := s.db.WithContext(ctx).
		Where("title_normalized = ? AND content_type = ?", titleNormalized, contentType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scopeContentType schränkt die Abfrage auf die Äquivalenzgruppe des Typs
// ein; unbekannte Typen filtern nicht.
func scopeContentType(q *gorm.DB, contentType models.ContentType) *gorm.DB {
	if group := contentType.Group(); group != nil {
		return q.Where("content_type IN ?", group)
	}
	return q
}

func (s *GormStore) ExactTitle(ctx context.Context, titleNormalized string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	var recs []*models.WorkRecord
	q := scopeContentType(s.db.WithContext(ctx), contentType)
	err := q.Where("title_normalized = ?", titleNormalized).Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *GormStore) TitleContains(ctx context.Context, substr string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	var recs []*models.WorkRecord
	q := scopeContentType(s.db.WithContext(ctx), contentType)
	err := q.Where("title_normalized LIKE ?", "%"+substr+"%").Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *GormStore) TitleContainsAny(ctx context.Context, words []string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	if len(words) == 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(words))
	args := make([]any, 0, len(words))
	for _, w := range words {
		conds = append(conds, "title_normalized LIKE ?")
		args = append(args, "%"+w+"%")
	}
	var recs []*models.WorkRecord
	q := scopeContentType(s.db.WithContext(ctx), contentType)
	err := q.Where(strings.Join(conds, " OR "), args...).Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *GormStore) Sample(ctx context.Context, contentType models.ContentType, limit int) ([]*models.WorkRecord, error) {
	var recs []*models.WorkRecord
	q := scopeContentType(s.db.WithContext(ctx), contentType)
	err := q.Order("id").Limit(limit).Find(&recs).Error
	return recs, err
}

func (s *GormStore) Stale(ctx context.Context, cutoff time.Time, limit int) ([]*models.WorkRecord, error) {
	var recs []*models.WorkRecord
	err := s.db.WithContext(ctx).
		Where("last_verified_at IS NULL OR last_verified_at < ?", cutoff).
		Order("last_verified_at ASC NULLS FIRST").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (s *GormStore) Insert(ctx context.Context, rec *models.WorkRecord) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}

func (s *GormStore) Save(ctx context.Context, rec *models.WorkRecord) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.WorkRecord{}).Count(&n).Error
	return n, err
}

func (s *GormStore) Transaction(ctx context.Context, fn func(RecordStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// GormSearchLogStore ist die Postgres-Implementierung des Suchprotokolls.
type GormSearchLogStore struct {
	db *gorm.DB
}

// NewGormSearchLogStore erstellt einen Protokoll-Store über der gegebenen
// gorm-Verbindung.
func NewGormSearchLogStore(db *gorm.DB) *GormSearchLogStore {
	return &GormSearchLogStore{db: db}
}

func (s *GormSearchLogStore) Append(ctx context.Context, entry *models.SearchLogEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormSearchLogStore) ByID(ctx context.Context, id uint) (*models.SearchLogEntry, error) {
	var entry models.SearchLogEntry
	err := s.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *GormSearchLogStore) Save(ctx context.Context, entry *models.SearchLogEntry) error {
	return s.db.WithContext(ctx).Save(entry).Error
}

func (s *GormSearchLogStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SearchLogEntry{}).
		Where("timestamp >= ?", since).Count(&n).Error
	return n, err
}
