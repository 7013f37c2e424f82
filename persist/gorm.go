package persist

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the single-row-per-store table backing GormSink.
type Snapshot struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt int64 `gorm:"autoUpdateTime:milli"`
}

// GormSink stores snapshots in Postgres, one row per store, for
// deployments that already run a database. The snapshot payload stays an
// opaque JSON blob; there is no relational schema for the records.
type GormSink struct {
	db   *gorm.DB
	name string
}

func NewGormSink(db *gorm.DB, name string) (*GormSink, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, err
	}
	return &GormSink{db: db, name: name}, nil
}

func (s *GormSink) Save(ctx context.Context, data []byte) error {
	snap := Snapshot{Name: s.name, Data: data}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&snap).Error
}

func (s *GormSink) Load(ctx context.Context) ([]byte, bool, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).First(&snap, "name = ?", s.name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap.Data, true, nil
}
