package greetings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradeline-server/internal/observability"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx stdlib driver for sqlx
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("not found")

// Hotline is a per-number greeting override row, provisioned out of band.
type Hotline struct {
	PhoneE164        string `db:"phone_e164"`
	AgentName        string `db:"agent_name"`
	Locale           string `db:"locale"`
	TaglineOn        bool   `db:"tagline_on"`
	GreetingTemplate string `db:"greeting_template"`
}

// Store reads hotline greeting overrides from Postgres.
type Store struct {
	db     *sqlx.DB
	logger *observability.Logger
}

// New opens the greeting store. The connection is lazy; a down database
// surfaces per-lookup, never at boot.
func New(connectionString string, logger *observability.Logger) (*Store, error) {
	db, err := sqlx.Open("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open greeting store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// HotlineByNumber fetches the greeting row for a hotline number.
func (s *Store) HotlineByNumber(ctx context.Context, phoneE164 string) (Hotline, error) {
	var h Hotline
	err := s.db.GetContext(ctx, &h,
		`SELECT phone_e164, agent_name, locale, tagline_on, greeting_template
		 FROM hotline_numbers
		 WHERE phone_e164 = $1`, phoneE164)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Hotline{}, ErrNotFound
		}
		return Hotline{}, fmt.Errorf("failed to fetch hotline %s: %w", phoneE164, err)
	}
	return h, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
