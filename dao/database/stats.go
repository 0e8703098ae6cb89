package database

import (
	"context"
	"fmt"
	"time"

	"gameforum/models"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// StatsRepository runs the hand-written aggregate SQL of the admin
// dashboard on the pool gorm already manages.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository shares db's connection pool; driver selects the
// placeholder style ("mysql", "postgres" or "sqlite").
func NewStatsRepository(db *gorm.DB, driver string) (*StatsRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB failed: %w", err)
	}
	if driver == "sqlite" {
		driver = "sqlite3"
	}
	return &StatsRepository{db: sqlx.NewDb(sqlDB, driver)}, nil
}

const adminStatsSQL = `SELECT
	(SELECT COUNT(*) FROM users) AS total_users,
	(SELECT COUNT(*) FROM threads) AS total_threads,
	(SELECT COUNT(*) FROM posts) AS total_posts,
	(SELECT COUNT(*) FROM reports) AS total_reports,
	(SELECT COUNT(*) FROM reports WHERE status = ?) AS pending_reports,
	(SELECT COUNT(*) FROM users WHERE created_at >= ?) AS today_users,
	(SELECT COUNT(*) FROM threads WHERE created_at >= ?) AS today_threads,
	(SELECT COUNT(*) FROM posts WHERE created_at >= ?) AS today_posts`

// AdminStats counts every table once plus the rows created since the
// start of the UTC day containing now.
func (r *StatsRepository) AdminStats(ctx context.Context, now time.Time) (*models.AdminStats, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := new(models.AdminStats)
	err := r.db.GetContext(ctx, stats, r.db.Rebind(adminStatsSQL),
		models.ReportPending, dayStart, dayStart, dayStart)
	if err != nil {
		return nil, wrap("AdminStats", err)
	}
	return stats, nil
}
