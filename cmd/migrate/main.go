package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logr.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = database.PostgresDSN(cfg)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logr.Fatalw("failed to open database", "error", err)
	}
	defer db.Close()

	if _, err := db.Exec(database.MigrationsTableDDL); err != nil {
		logr.Fatalw("failed to create migrations table", "error", err)
	}

	if *rollback {
		err = rollbackLast(db, logr)
	} else {
		err = applyPending(db, logr)
	}
	if err != nil {
		logr.Fatalw("migration failed", "error", err)
	}
}

func applyPending(db *sql.DB, log *zap.SugaredLogger) error {
	all, err := migrations.List()
	if err != nil {
		return err
	}

	for _, m := range all {
		var applied bool
		err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", m.Version).Scan(&applied)
		if err != nil {
			return errors.Wrap(err, "failed to check migration status")
		}
		if applied {
			log.Infow("migration already applied", "name", m.Name)
			continue
		}

		err = inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.Up); err != nil {
				return errors.Wrapf(err, "failed to apply migration %s", m.Name)
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Version, m.Name)
			return errors.Wrap(err, "failed to record migration")
		})
		if err != nil {
			return err
		}
		log.Infow("applied migration", "name", m.Name)
	}
	log.Info("all migrations applied")
	return nil
}

func rollbackLast(db *sql.DB, log *zap.SugaredLogger) error {
	var version, name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to get last migration")
	}

	m, ok, err := migrations.Find(version)
	if err != nil {
		return err
	}
	if !ok || m.Down == "" {
		return errors.Errorf("no rollback for migration %s", name)
	}

	err = inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.Down); err != nil {
			return errors.Wrapf(err, "failed to roll back %s", name)
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version)
		return errors.Wrap(err, "failed to remove migration record")
	})
	if err != nil {
		return err
	}
	log.Infow("rolled back migration", "name", name)
	return nil
}

func inTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit")
}
