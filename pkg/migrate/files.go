package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	slugStrip  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Validate checks that every .sql file is named <YYYYMMDDHHMMSS>_<slug>.sql,
// that versions are unique, and that each file carries an Up section
// followed by a Down section.
func (s Source) Validate() error {
	versions, err := s.scan(true)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %s", s)
	}
	return nil
}

func (s Source) scan(checkBodies bool) (map[int64]string, error) {
	fsys, root := s.filesystem()
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", s, err)
	}

	versions := make(map[int64]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("migration %q: want YYYYMMDDHHMMSS_name.sql", name)
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, dup := versions[version]; dup {
			return nil, fmt.Errorf("version %d used by %q and %q", version, prev, name)
		}
		versions[version] = name

		if !checkBodies {
			continue
		}
		body, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return nil, fmt.Errorf("migration %q: %w", name, err)
		}
	}
	return versions, nil
}

func checkAnnotations(body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return errors.New(`missing "-- +goose Up"`)
	case down < 0:
		return errors.New(`missing "-- +goose Down"`)
	case down < up:
		return errors.New("Down section precedes Up")
	}
	return nil
}

// Create writes an empty goose migration into dir and returns its path. The
// version is the current UTC timestamp, bumped past the newest existing
// file so two creates in the same second never collide.
func Create(dir, name string) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %q: %w", dir, err)
	}

	existing, err := Dir(dir).scan(false)
	if err != nil {
		return "", err
	}
	version, _ := strconv.ParseInt(time.Now().UTC().Format(versionLayout), 10, 64)
	for v := range existing {
		if v >= version {
			version = v + 1
		}
	}

	full := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, slug))
	body := fmt.Sprintf("-- +goose Up\n-- +goose StatementBegin\n-- %[1]s\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n-- undo %[1]s\n-- +goose StatementEnd\n", slug)
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", full, err)
	}
	return full, nil
}
