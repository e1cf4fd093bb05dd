package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 将文档以 JSON 文本保存在 documents 表中
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 构造 GormStore
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) Get(ctx context.Context, collection, key string) (content.Tree, error) {
	var record db.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&record).Error
	if err != nil {
		return nil, classifyGorm(fmt.Sprintf("get %s/%s", collection, key), err)
	}
	return decodeBody(record.Body)
}

func (s *GormStore) Set(ctx context.Context, collection, key string, value content.Tree) error {
	body, err := encodeBody(value)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}

	record := db.Document{Collection: collection, DocKey: key, Body: body}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return classifyGorm(fmt.Sprintf("set %s/%s", collection, key), err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, collection, key string, value content.Tree) error {
	op := fmt.Sprintf("update %s/%s", collection, key)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record db.Document
		if err := tx.Where("collection = ? AND doc_key = ?", collection, key).First(&record).Error; err != nil {
			return err
		}
		existing, err := decodeBody(record.Body)
		if err != nil {
			return err
		}
		body, err := encodeBody(mergeTopLevel(existing, value))
		if err != nil {
			return err
		}
		return tx.Model(&record).Update("body", body).Error
	})
	if err != nil {
		return classifyGorm(op, err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, collection string) ([]Document, error) {
	var records []db.Document
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_key ASC").
		Find(&records).Error; err != nil {
		return nil, classifyGorm("list "+collection, err)
	}
	return toDocuments(records)
}

func (s *GormStore) Add(ctx context.Context, collection string, value content.Tree) (string, error) {
	body, err := encodeBody(value)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	record := db.Document{Collection: collection, DocKey: uuid.NewString(), Body: body}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", classifyGorm("add "+collection, err)
	}
	return record.DocKey, nil
}

func (s *GormStore) Delete(ctx context.Context, collection, key string) error {
	result := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		Delete(&db.Document{})
	if result.Error != nil {
		return classifyGorm(fmt.Sprintf("delete %s/%s", collection, key), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, key, ErrNotFound)
	}
	return nil
}

func (s *GormStore) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	if !validField(field) {
		return nil, fmt.Errorf("query %s: invalid order field %q", collection, field)
	}

	jsonPath := "$." + field
	order := "ASC"
	if dir == Descending {
		order = "DESC"
	}

	var records []db.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND json_extract(body, ?) IS NOT NULL", collection, jsonPath).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "json_extract(body, ?) " + order,
			Vars:               []interface{}{jsonPath},
			WithoutParentheses: true,
		}}).
		Find(&records).Error
	if err != nil {
		return nil, classifyGorm("query "+collection, err)
	}
	return toDocuments(records)
}

// Ping 检查底层 sqlite 连接
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func toDocuments(records []db.Document) ([]Document, error) {
	docs := make([]Document, 0, len(records))
	for _, record := range records {
		fields, err := decodeBody(record.Body)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", record.Collection, record.DocKey, err)
		}
		docs = append(docs, Document{ID: record.DocKey, Fields: fields})
	}
	return docs, nil
}

func encodeBody(value content.Tree) (string, error) {
	if value == nil {
		value = content.Tree{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeBody(body string) (content.Tree, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, err
	}
	return content.NormalizeTree(decoded)
}

func classifyGorm(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
