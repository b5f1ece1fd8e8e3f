// Package history persists finished run records to a local SQLite database
// for later inspection. The store is write-mostly; reads serve debugging and
// offline analysis of routing and fallback behavior.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
	"github.com/AyushPoddar351/E-Commerce-Assistant/workflow"
)

// Run is the persisted form of a workflow.RunRecord.
type Run struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"uniqueIndex;size:36"`
	Query        string
	FinalQuery   string
	Route        string `gorm:"index"`
	Rewrites     int
	EvidenceUsed int
	Grounded     bool
	Status       string `gorm:"index"`
	DurationMS   int64
	CreatedAt    time.Time `gorm:"index"`
}

// Store records finished runs. It implements workflow.RunRecorder.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open creates or opens the SQLite database at path and migrates the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	logger.Info("history store opened", zap.String("path", path))

	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "history")),
	}, nil
}

// Record persists one finished run.
func (s *Store) Record(ctx context.Context, rec workflow.RunRecord) error {
	run := Run{
		RunID:        rec.RunID,
		Query:        rec.Query,
		FinalQuery:   rec.FinalQuery,
		Route:        string(rec.Route),
		Rewrites:     rec.Rewrites,
		EvidenceUsed: rec.EvidenceUsed,
		Grounded:     rec.Grounded,
		Status:       rec.Status,
		DurationMS:   rec.Duration.Milliseconds(),
		CreatedAt:    rec.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("record run %s: %w", rec.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return runs, nil
}

// ByRoute returns up to limit runs that took the given route, newest first.
func (s *Store) ByRoute(ctx context.Context, route types.RouteDecision, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []Run
	err := s.db.WithContext(ctx).
		Where("route = ?", string(route)).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list runs by route: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given run ID.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return &run, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
