// Package migrations embeds the SQL schema migrations for golang-migrate.
package migrations

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

// FS holds every migration file, named <version>_<title>.<up|down>.sql.
//
//go:embed *.sql
var FS embed.FS

// UpScripts returns the contents of every up migration in version order.
func UpScripts() ([]string, error) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		b, err := FS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(string(b)))
	}
	return out, nil
}
