// Package importer reads domain users from the semicolon separated login
// files produced by school secretaries and by the get-login tool.
package importer

import (
	"encoding/csv" // csv splits the ';' separated records
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/creasty/defaults"        // defaults fills Options from struct tags
	"github.com/hashicorp/go-multierror" // go-multierror collects one error per bad row
	"golang.org/x/text/encoding"         // encoding is the common decoder interface
	"golang.org/x/text/encoding/charmap" // charmap decodes legacy single byte files
	"golang.org/x/text/encoding/unicode" // unicode handles UTF-8 and BOM detection
	"golang.org/x/text/transform"        // transform wraps the file in a decoding reader

	"github.com/simone-rolando/samba-ad-tools/internal/samba"
)

///////////////////////////////////////////////////////////////////////////////
// Options and results
///////////////////////////////////////////////////////////////////////////////

// Options controls how a login file is read.
type Options struct {
	// Encoding of the file when it has no byte order mark: utf-8, latin1
	// or windows-1252.
	Encoding string `default:"utf-8"`

	// Delimiter separates fields. Only its first character is used.
	Delimiter string `default:";"`
}

// NewOptions returns Options with every default applied.
func NewOptions() (*Options, error) {
	opts := &Options{}
	if err := defaults.Set(opts); err != nil {
		return nil, fmt.Errorf("failed to set default values: %w", err)
	}
	return opts, nil
}

// RowError reports a data row that was skipped.
type RowError struct {
	Line int   // 1-based line number in the file
	Err  error // Why the row was rejected
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of reading a login file. Err aggregates one
// RowError per skipped row and is nil when every row was accepted.
type Result struct {
	Users   []*samba.DomainUser
	Skipped int
	Err     error
}

///////////////////////////////////////////////////////////////////////////////
// Header handling
///////////////////////////////////////////////////////////////////////////////

// column names, with the aliases used by the export header.
const (
	colLogin     = "login"
	colLastName  = "last_name"
	colFirstName = "first_name"
	colGroups    = "groups"
	colClass     = "class"
	colTaxCode   = "tax_code"
	colPassword  = "password"
)

var aliases = map[string]string{
	"login":      colLogin,
	"last_name":  colLastName,
	"cognome":    colLastName,
	"first_name": colFirstName,
	"nome":       colFirstName,
	"groups":     colGroups,
	"gruppo":     colGroups,
	"class":      colClass,
	"classe":     colClass,
	"tax_code":   colTaxCode,
	"cf":         colTaxCode,
	"password":   colPassword,
}

var required = []string{colLogin, colLastName, colFirstName, colGroups, colClass, colPassword}

// columns maps canonical column names to field indexes.
type columns map[string]int

func parseHeader(header []string) (columns, error) {
	cols := columns{}
	for i, h := range header {
		name, ok := aliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// width is the minimum number of fields a row needs.
func (c columns) width() int {
	w := 0
	for _, i := range c {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

///////////////////////////////////////////////////////////////////////////////
// Reading
///////////////////////////////////////////////////////////////////////////////

// ReadLoginCSV reads the login file at path.
func ReadLoginCSV(path string, opts *Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open login file: %w", err)
	}
	defer f.Close()

	return ReadLogins(f, opts)
}

// ReadLogins reads login records from r. Rows that cannot be parsed are
// skipped and reported in Result.Err; a bad header is fatal.
func ReadLogins(r io.Reader, opts *Options) (*Result, error) {
	if opts == nil {
		var err error
		if opts, err = NewOptions(); err != nil {
			return nil, err
		}
	}

	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(dec.NewDecoder())))
	reader.Comma = ';'
	if opts.Delimiter != "" {
		reader.Comma = []rune(opts.Delimiter)[0]
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	width := cols.width()

	result := &Result{}
	var rowErrs *multierror.Error
	skip := func(line int, err error) {
		result.Skipped++
		rowErrs = multierror.Append(rowErrs, &RowError{Line: line, Err: err})
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skip(pe.StartLine, pe.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read login file: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(row) < width {
			skip(line, fmt.Errorf("row has %d fields, expected at least %d", len(row), width))
			continue
		}
		login := cols.get(row, colLogin)
		if login == "" {
			skip(line, fmt.Errorf("empty login"))
			continue
		}

		result.Users = append(result.Users, &samba.DomainUser{
			CommonName: login,
			FirstName:  cols.get(row, colFirstName),
			LastName:   cols.get(row, colLastName),
			Groups:     SplitGroups(cols.get(row, colGroups), cols.get(row, colClass)),
			Password:   cols.get(row, colPassword),
		})
	}

	result.Err = rowErrs.ErrorOrNil()
	return result, nil
}

// SplitGroups splits a comma separated group list, trimming every token and
// dropping empty ones, then appends class when it is not empty.
func SplitGroups(groups, class string) []string {
	out := []string{}
	for _, g := range strings.Split(groups, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	if class = strings.TrimSpace(class); class != "" {
		out = append(out, class)
	}
	return out
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}
