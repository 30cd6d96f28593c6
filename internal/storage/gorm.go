package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var _ Store = (*GormStore)(nil)

// recordRow maps one stored document onto the records table. The document
// body lives in a JSON column so every entity kind shares a single schema.
type recordRow struct {
	Kind      string         `gorm:"column:kind;primaryKey;size:64"`
	ID        string         `gorm:"column:id;primaryKey;size:36"`
	Doc       datatypes.JSON `gorm:"column:doc"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (recordRow) TableName() string {
	return "records"
}

// GormStore is the SQL-backed Store. Production runs it on Postgres, tests
// on in-memory SQLite; document field filters go through datatypes.JSONQuery
// so both dialects work.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the records table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&recordRow{})
}

func (s *GormStore) Insert(ctx context.Context, rec Record) error {
	doc, err := normalizeDoc(rec.Doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	row := recordRow{Kind: rec.Kind, ID: rec.ID, Doc: datatypes.JSON(raw)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert %s/%s: %w", rec.Kind, rec.ID, err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, kind, id string, fields map[string]any) error {
	normalized, err := normalizeDoc(fields)
	if err != nil {
		return fmt.Errorf("normalize fields: %w", err)
	}

	var row recordRow
	err = s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", kind, id, err)
	}

	doc := map[string]any{}
	if len(row.Doc) > 0 {
		if err := json.Unmarshal(row.Doc, &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", kind, id, err)
		}
	}
	for k, v := range normalized {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	// Updates with the model set also refreshes updated_at.
	err = s.db.WithContext(ctx).
		Model(&recordRow{}).
		Where("kind = ? AND id = ?", kind, id).
		Updates(map[string]any{"doc": datatypes.JSON(raw)}).Error
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, kind string, f Filter) (int64, error) {
	res := s.scoped(ctx, kind, f).Delete(&recordRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("remove %s: %w", kind, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) FindOne(ctx context.Context, kind, id string) (Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %s/%s: %w", kind, id, err)
	}
	return rowToRecord(row)
}

func (s *GormStore) Find(ctx context.Context, kind string, f Filter) ([]Record, error) {
	var rows []recordRow
	if err := s.scoped(ctx, kind, f).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GormStore) Count(ctx context.Context, kind string, f Filter) (int64, error) {
	var n int64
	if err := s.scoped(ctx, kind, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// Sum decodes the matching documents and adds the field up in Go. A SQL-side
// aggregate over a JSON field would need per-dialect casts; the filtered sets
// here (reservations or requests of one item) stay small.
func (s *GormStore) Sum(ctx context.Context, kind string, f Filter, field string) (float64, error) {
	recs, err := s.Find(ctx, kind, f)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, rec := range recs {
		if n, ok := AsNumber(rec.Doc[field]); ok {
			total += n
		}
	}
	return total, nil
}

func (s *GormStore) scoped(ctx context.Context, kind string, f Filter) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&recordRow{}).Where("kind = ?", kind)
	for field, v := range f {
		if field == FilterID {
			tx = tx.Where("id = ?", v)
			continue
		}
		tx = tx.Where(datatypes.JSONQuery("doc").Equals(v, field))
	}
	return tx
}

func rowToRecord(row recordRow) (Record, error) {
	doc := map[string]any{}
	if len(row.Doc) > 0 {
		if err := json.Unmarshal(row.Doc, &doc); err != nil {
			return Record{}, fmt.Errorf("decode %s/%s: %w", row.Kind, row.ID, err)
		}
	}
	return Record{
		ID:        row.ID,
		Kind:      row.Kind,
		Doc:       doc,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
