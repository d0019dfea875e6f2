package mappoints

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lewtec/mappoints/db"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// GetDatabase opens the SQLite file at filename. The name is passed as an
// escaped file: URI, so '?', '#' and '%' in paths are kept literally.
func GetDatabase(filename string) (*sql.DB, error) {
	return sql.Open("sqlite", databaseURI(filename))
}

func databaseURI(filename string) string {
	path := (&url.URL{Path: filepath.ToSlash(filename)}).EscapedPath()
	return "file:" + path + "?_time_format=sqlite"
}

// PrepareDatabase applies the embedded migrations. It is safe to call on an
// already prepared database.
func PrepareDatabase(ctx context.Context, database *sql.DB) error {
	if err := database.PingContext(ctx); err != nil {
		return fmt.Errorf("while opening database: %w", err)
	}
	source, err := iofs.New(db.Migrations, db.MigrationsDir)
	if err != nil {
		return fmt.Errorf("while loading migrations: %w", err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(database, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("while setting up migration driver: %w", err)
	}
	// m.Close would also close the database handle, which belongs to the caller
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("while setting up migrations: %w", err)
	}

	log.Debug().Msg("PrepareDatabase: applying migrations")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug().Msg("PrepareDatabase: schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("while applying migrations: %w", err)
	}
	version, _, _ := m.Version()
	log.Debug().Uint("version", version).Msg("PrepareDatabase: success")
	return nil
}
