package register

import (
	"context"
	"database/sql" // database/sql is the pool the mysql driver plugs into
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql" // mysql registers the "mysql" driver and formats DSNs
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/logging"
)

// DefaultPort is the port of the register database server.
const DefaultPort = 3306

// loginQuery selects every column read into a User, in field order.
const loginQuery = "SELECT login, cognome, nome, classe, password, CF, gruppo, data_nascita, data_modifica FROM ALUNNO"

// dateLayouts are the forms a date column may take, depending on the
// column type and driver settings.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

///////////////////////////////////////////////////////////////////////////////
// Connection
///////////////////////////////////////////////////////////////////////////////

// ConnectionURL returns the URL form of the register database address.
// It contains the password and must not be logged.
func ConnectionURL(cfg *config.GeneratorConfig) string {
	return fmt.Sprintf("mysql://%s:%s@%s:%d/%s", cfg.DBUser, cfg.DBPass, cfg.DBHost, DefaultPort, cfg.DBName)
}

// DSN returns the data source name understood by the mysql driver for the
// same database as ConnectionURL.
func DSN(cfg *config.GeneratorConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.DBUser
	c.Passwd = cfg.DBPass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(DefaultPort))
	c.DBName = cfg.DBName
	return c.FormatDSN()
}

// Open connects to the register database and checks the connection.
func Open(ctx context.Context, cfg *config.GeneratorConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open register database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to register database on %s: %w", cfg.DBHost, err)
	}
	return db, nil
}

///////////////////////////////////////////////////////////////////////////////
// Store
///////////////////////////////////////////////////////////////////////////////

// Store reads users from the register database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: logging.OrNop(log)}
}

// LoginData returns every row of the ALUNNO table.
func (s *Store) LoginData(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, loginQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query login data: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var login, last, first, class, password, taxCode, group, birth, modified sql.NullString
		if err := rows.Scan(&login, &last, &first, &class, &password, &taxCode, &group, &birth, &modified); err != nil {
			return nil, fmt.Errorf("failed to scan login data: %w", err)
		}

		u := User{
			Login:     login.String,
			LastName:  last.String,
			FirstName: first.String,
			Class:     class.String,
			Password:  password.String,
			TaxCode:   taxCode.String,
			Group:     group.String,
		}
		if d, ok := normalizeDate(birth); ok {
			u.BirthDate = d
		}
		if d, ok := normalizeDate(modified); ok {
			u.DateModified = &d
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read login data: %w", err)
	}

	s.log.Debug("login data loaded", zap.Int("users", len(users)))
	return users, nil
}

// normalizeDate returns v as YYYY-MM-DD. It reports false for NULL and for
// values in none of the known layouts, such as MySQL's zero date.
func normalizeDate(v sql.NullString) (string, bool) {
	if !v.Valid {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v.String); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}
