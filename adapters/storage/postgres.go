package storage

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// projectRecord is the projects table row
type projectRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name      string         `gorm:"size:255;uniqueIndex;not null"`
	Location  string         `gorm:"size:128"`
	Soil      string         `gorm:"size:32"`
	BOQ       types.BOQTable `gorm:"column:boq_json;type:jsonb;serializer:json"`
	Narrative string         `gorm:"type:text"`
	UpdatedAt time.Time
}

func (projectRecord) TableName() string {
	return "projects"
}

// PostgresStore keeps projects in a PostgreSQL table. Saves upsert on the
// unique project name, so concurrent writers to one name resolve to the
// last commit.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgresStore connects and migrates the tables
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.Config("postgres storage requires a DSN")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.TypeNetwork, "failed to connect database", err)
	}
	return NewPostgresStore(db)
}

// NewPostgresStore wraps an open gorm connection and migrates the project
// and site ledger tables
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(append([]interface{}{&projectRecord{}}, ledgerModels...)...); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to migrate tables", err)
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Project) error {
	if err := prepare(p, s.now()); err != nil {
		return err
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		id = uuid.New()
		p.ID = id.String()
	}

	rec := projectRecord{
		ID:        id,
		Name:      p.Name,
		Location:  string(p.Location),
		Soil:      string(p.Soil),
		BOQ:       p.BOQ,
		Narrative: p.Narrative,
		UpdatedAt: p.UpdatedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"location", "soil", "boq_json", "narrative", "updated_at"}),
	}).Create(&rec).Error
}

func (s *PostgresStore) Load(ctx context.Context, name string) (*Project, error) {
	var rec projectRecord
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&rec).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}
	return &Project{
		ID:        rec.ID.String(),
		Name:      rec.Name,
		Location:  types.Location(rec.Location),
		Soil:      types.SoilType(rec.Soil),
		BOQ:       rec.BOQ,
		Narrative: rec.Narrative,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Delete(&projectRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(name)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	var recs []projectRecord
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for i := range recs {
		out = append(out, summarize(&Project{
			Name:      recs[i].Name,
			Location:  types.Location(recs[i].Location),
			BOQ:       recs[i].BOQ,
			UpdatedAt: recs[i].UpdatedAt,
		}))
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
