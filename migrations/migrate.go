package migrations

import (
	"database/sql"
	"embed"
	"log"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *sql
var embedMigrations embed.FS

// Migrate brings the session schema up to date. Serving requests
// against a stale schema is never safe, so any failure is fatal.
func Migrate(pgurl string) {
	db, err := sql.Open("pgx", pgurl)
	if err != nil {
		log.Fatal("migrations: open database: ", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("migrations: set dialect: ", err)
	}

	if err := goose.Up(db, "."); err != nil {
		log.Fatal("migrations: apply: ", err)
	}

	if err := db.Close(); err != nil {
		log.Fatal("migrations: close connection: ", err)
	}
	slog.Info("session schema up to date")
}
