package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source is a set of goose migrations: a directory on disk or the files
// compiled into the binary.
type Source struct {
	fsys fs.FS
	dir  string
}

func Dir(dir string) Source { return Source{dir: dir} }

func Embedded() Source { return Source{fsys: embedded, dir: "migrations"} }

func (s Source) String() string {
	if s.fsys != nil {
		return "embedded"
	}
	return s.dir
}

func (s Source) filesystem() (fs.FS, string) {
	if s.fsys != nil {
		return s.fsys, s.dir
	}
	return os.DirFS(s.dir), "."
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func (s Source) withGoose(fn func() error) error {
	if s.dir == "" {
		return errors.New("migrations dir is required")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(s.fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// Run executes a goose command (up, down, status, redo, ...) against db.
func (s Source) Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return errors.New("db is required")
	}
	return s.withGoose(func() error {
		if err := goose.RunContext(ctx, command, db, s.dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateTo moves the schema up or down until it sits at target.
func (s Source) MigrateTo(ctx context.Context, db *sql.DB, target int64) error {
	if db == nil {
		return errors.New("db is required")
	}
	return s.withGoose(func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		switch {
		case current == target:
			return nil
		case current < target:
			err = goose.UpToContext(ctx, db, s.dir, target)
		default:
			err = goose.DownToContext(ctx, db, s.dir, target)
		}
		if err != nil {
			return fmt.Errorf("migrate %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

// Version reports the schema version recorded in the goose table.
func (s Source) Version(ctx context.Context, db *sql.DB) (int64, error) {
	var version int64
	err := s.withGoose(func() error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, db)
		return err
	})
	return version, err
}
