package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/atelier-korea/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageBlob is one serialized collection state. Payloads are JSON documents.
type StorageBlob struct {
	Key       string         `gorm:"primaryKey"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (StorageBlob) TableName() string {
	return "storage_blobs"
}

type blobRepository struct {
	db *gorm.DB
}

func NewBlobRepository(db *gorm.DB) *blobRepository {
	return &blobRepository{db: db}
}

func (r *blobRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var blob StorageBlob
	err := r.db.WithContext(ctx).First(&blob, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(blob.Payload), nil
}

func (r *blobRepository) Save(ctx context.Context, key string, data []byte) error {
	blob := &StorageBlob{
		Key:       key,
		Payload:   datatypes.JSON(data),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(blob).Error
}
