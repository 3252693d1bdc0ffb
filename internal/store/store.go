// Package store provides the gorm-backed activity store: listener process
// logs, issue history and session transitions. It is append-only from the
// daemon's perspective; nothing is read back into core state on restart.
package store

import (
	"fmt"
	"time"

	"github.com/zulandar/mqsentinel/internal/config"
	"github.com/zulandar/mqsentinel/internal/issues"
	"github.com/zulandar/mqsentinel/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels returns the GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ListenerLog{},
		&models.IssueEvent{},
		&models.SessionEvent{},
	}
}

// Open connects to the activity store selected by cfg and runs migrations.
func Open(cfg config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return db, nil
}

// RecordIssues appends detected issues to the history table. Errors are
// returned for the caller to log; detection never depends on the store.
func RecordIssues(db *gorm.DB, detected []issues.Issue) error {
	if db == nil || len(detected) == 0 {
		return nil
	}
	rows := make([]models.IssueEvent, 0, len(detected))
	for _, issue := range detected {
		rows = append(rows, models.IssueEvent{
			ObjectType:    string(issue.ObjectType),
			ObjectName:    issue.ObjectName,
			IssueCode:     string(issue.Code),
			Message:       issue.Message,
			ObjectDetails: issue.ObjectDetails,
			DetectedAt:    issue.Timestamp,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("store: record issues: %w", err)
	}
	return nil
}

// RecordSessionEvent appends one session transition row.
func RecordSessionEvent(db *gorm.DB, queueManager, state, detail string) error {
	if db == nil {
		return nil
	}
	row := models.SessionEvent{
		QueueManager: queueManager,
		State:        state,
		Detail:       detail,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("store: record session event: %w", err)
	}
	return nil
}
