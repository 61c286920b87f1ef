package register

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/logging"
)

// Header lists the columns of every class file.
var Header = []string{"login", "cognome", "nome", "gruppo", "classe", "CF", "password"}

// Line joins fields with ';' and ends them with a separator and a newline.
// Fields are written verbatim, without quoting.
func Line(fields ...string) string {
	return strings.Join(fields, ";") + ";\n"
}

// Exporter writes one login file per class.
type Exporter struct {
	Dir    string `default:"."`      // Directory receiving the files
	Prefix string `default:"export"` // File name prefix, <Prefix>_<class>.csv

	// Truncate empties existing files before writing. By default users
	// are appended and the header is only written to empty files.
	Truncate bool

	Log *zap.Logger
}

// NewExporter returns an Exporter with defaults applied, then dir and
// prefix when they are not empty.
func NewExporter(dir, prefix string) (*Exporter, error) {
	e := &Exporter{}
	if err := defaults.Set(e); err != nil {
		return nil, fmt.Errorf("failed to set default values: %w", err)
	}
	if dir != "" {
		e.Dir = dir
	}
	if prefix != "" {
		e.Prefix = prefix
	}
	return e, nil
}

// Path returns the file written for class.
func (e *Exporter) Path(class string) string {
	return filepath.Join(e.Dir, fmt.Sprintf("%s_%s.csv", e.Prefix, class))
}

// Export sorts users by class and writes one file per class. It returns the
// paths written, in class order.
func (e *Exporter) Export(users []User) ([]string, error) {
	sorted := append([]User(nil), users...)
	SortByClass(sorted)

	var paths []string
	for _, class := range Classes(sorted) {
		path, err := e.WriteClass(class, FilterByClass(sorted, class))
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteClass writes users to the file of class.
func (e *Exporter) WriteClass(class string, users []User) (string, error) {
	log := logging.OrNop(e.Log)
	path := e.Path(class)

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if e.Truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("cannot stat %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if info.Size() == 0 {
		if _, err := w.WriteString(Line(Header...)); err != nil {
			return "", fmt.Errorf("cannot write to %s: %w", path, err)
		}
	}
	for _, u := range users {
		line := Line(u.Login, u.LastName, u.FirstName, u.Group, u.Class, u.TaxCode, u.Password)
		if _, err := w.WriteString(line); err != nil {
			return "", fmt.Errorf("cannot write to %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("cannot write to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cannot close %s: %w", path, err)
	}

	log.Info("class file written", zap.String("path", path), zap.Int("users", len(users)))
	return path, nil
}
