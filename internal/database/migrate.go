package database

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/migrations"
)

// MigrationsTableDDL creates the table recording applied migrations.
const MigrationsTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(32) PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// RunMigrations brings the schema up to date. SQLite databases are
// auto-migrated from the models; PostgreSQL runs the embedded SQL files.
func RunMigrations(db *gorm.DB, log *zap.SugaredLogger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Debug("using GORM auto-migration for SQLite")
		return errors.Wrap(db.AutoMigrate(models.All()...), "failed to auto-migrate")
	}

	all, err := migrations.List()
	if err != nil {
		return err
	}
	if err := db.Exec(MigrationsTableDDL).Error; err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	for _, m := range all {
		var count int64
		if err := db.Table("schema_migrations").Where("version = ?", m.Version).Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check migration status")
		}
		if count > 0 {
			log.Debugw("skipping migration", "name", m.Name)
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.Up).Error; err != nil {
				return errors.Wrapf(err, "failed to execute migration %s", m.Name)
			}
			return errors.Wrapf(
				tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name).Error,
				"failed to record migration %s", m.Name,
			)
		})
		if err != nil {
			return err
		}
		log.Infow("applied migration", "name", m.Name)
	}
	return nil
}
