// Package archive persists generated reports so the dashboard can serve
// history without re-running the pipeline.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/domain"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("report_not_found")

// ReportRecord is one archived report run.
type ReportRecord struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	PeriodLabel string         `gorm:"index" json:"period_label"`
	GeneratedAt time.Time      `json:"generated_at"`
	Payload     datatypes.JSON `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (ReportRecord) TableName() string {
	return "report_records"
}

// NewDB opens the archive database and runs migrations.
func NewDB(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ReportRecord{}); err != nil {
		return nil, err
	}
	log.Named("archive").Info("archive opened", zap.String("path", cfg.DBPath))
	return db, nil
}

// Params are the store dependencies.
type Params struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
	Log  *zap.Logger
}

// Store reads and writes archived reports.
type Store struct {
	db   *gorm.DB
	node *snowflake.Node
	log  *zap.Logger
}

// NewStore builds a Store.
func NewStore(p Params) *Store {
	return &Store{
		db:   p.DB,
		node: p.Node,
		log:  p.Log.Named("archive.store"),
	}
}

// Save archives one report and returns its record.
func (s *Store) Save(ctx context.Context, report *aggdomain.Report) (*ReportRecord, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	record := &ReportRecord{
		ID:          s.node.Generate(),
		PeriodLabel: report.PeriodLabel,
		GeneratedAt: report.GeneratedAt,
		Payload:     datatypes.JSON(payload),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	s.log.Info("report archived",
		zap.Int64("id", record.ID.Int64()),
		zap.String("period", record.PeriodLabel),
	)
	return record, nil
}

// Latest returns the most recently archived report.
func (s *Store) Latest(ctx context.Context) (*ReportRecord, error) {
	var record ReportRecord
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ByID returns one archived report by its identifier.
func (s *Store) ByID(ctx context.Context, id snowflake.ID) (*ReportRecord, error) {
	var record ReportRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns archive metadata newest-first, payloads omitted.
func (s *Store) List(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []ReportRecord
	err := s.db.WithContext(ctx).
		Select("id", "period_label", "generated_at", "created_at").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Module wires the archive database and store.
var Module = fx.Module("archive",
	fx.Provide(NewDB),
	fx.Provide(NewStore),
)
