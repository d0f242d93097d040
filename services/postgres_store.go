package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/voltaic-labs/gridveil/ledger"
)

// PostgresStore implements ledger.Store with PostgreSQL persistence.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS encrypted_sessions (
		id BIGSERIAL PRIMARY KEY,
		station_id BYTEA NOT NULL,
		start_bucket BYTEA NOT NULL,
		duration_bucket BYTEA NOT NULL,
		energy BYTEA NOT NULL,
		submitted_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS window_metrics (
		window_key TEXT PRIMARY KEY,
		total_energy BYTEA NOT NULL,
		session_count BYTEA NOT NULL,
		initialized BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS request_correlations (
		request_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		context_key TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS revealed_results (
		request_id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		payload TEXT NOT NULL,
		revealed BOOLEAN NOT NULL,
		delivered_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_submitted ON encrypted_sessions(submitted_at);
	CREATE INDEX IF NOT EXISTS idx_correlations_context ON request_correlations(context_key);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// InsertSession persists a session record and returns the assigned
// sequence number.
func (s *PostgresStore) InsertSession(session *ledger.EncryptedSession) (ledger.SessionID, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id uint64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO encrypted_sessions (station_id, start_bucket, duration_bucket, energy, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		[]byte(session.StationID),
		[]byte(session.StartBucket),
		[]byte(session.DurationBucket),
		[]byte(session.Energy),
		session.SubmittedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return ledger.SessionID(id), nil
}

// Session retrieves a stored session record.
func (s *PostgresStore) Session(id ledger.SessionID) (*ledger.EncryptedSession, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session := &ledger.EncryptedSession{ID: id}
	var stationID, startBucket, durationBucket, energy []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT station_id, start_bucket, duration_bucket, energy, submitted_at
		FROM encrypted_sessions WHERE id = $1`, uint64(id),
	).Scan(&stationID, &startBucket, &durationBucket, &energy, &session.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	session.StationID = stationID
	session.StartBucket = startBucket
	session.DurationBucket = durationBucket
	session.Energy = energy
	return session, true, nil
}

// Window retrieves the aggregate for a window key.
func (s *PostgresStore) Window(key ledger.WindowKey) (*ledger.WindowMetrics, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := &ledger.WindowMetrics{}
	var totalEnergy, sessionCount []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT total_energy, session_count, initialized
		FROM window_metrics WHERE window_key = $1`, string(key),
	).Scan(&totalEnergy, &sessionCount, &m.Initialized)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	m.TotalEnergy = totalEnergy
	m.SessionCount = sessionCount
	return m, true, nil
}

// PutWindow stores the aggregate for a window key.
func (s *PostgresStore) PutWindow(key ledger.WindowKey, m *ledger.WindowMetrics) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO window_metrics (window_key, total_energy, session_count, initialized, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (window_key) DO UPDATE SET
			total_energy = EXCLUDED.total_energy,
			session_count = EXCLUDED.session_count,
			initialized = EXCLUDED.initialized,
			updated_at = NOW()`,
		string(key), []byte(m.TotalEnergy), []byte(m.SessionCount), m.Initialized)
	return err
}

// PutCorrelation records the routing entry for an outbound request.
func (s *PostgresStore) PutCorrelation(id ledger.RequestID, c ledger.Correlation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_correlations (request_id, kind, context_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id) DO NOTHING`,
		string(id), string(c.Kind), string(c.Context))
	return err
}

// Correlation retrieves the routing entry for a request id.
func (s *PostgresStore) Correlation(id ledger.RequestID) (ledger.Correlation, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var kind, contextKey string
	err := s.db.QueryRowContext(ctx, `
		SELECT kind, context_key FROM request_correlations WHERE request_id = $1`,
		string(id),
	).Scan(&kind, &contextKey)
	if err == sql.ErrNoRows {
		return ledger.Correlation{}, false, nil
	}
	if err != nil {
		return ledger.Correlation{}, false, err
	}

	return ledger.Correlation{
		Kind:    ledger.RequestKind(kind),
		Context: ledger.ContextKey(contextKey),
	}, true, nil
}

// PutResult commits a revealed result, overwriting any prior value.
func (s *PostgresStore) PutResult(id ledger.RequestID, r *ledger.RevealedResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revealed_results (request_id, label, payload, revealed, delivered_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (request_id) DO UPDATE SET
			label = EXCLUDED.label,
			payload = EXCLUDED.payload,
			revealed = EXCLUDED.revealed,
			delivered_at = NOW()`,
		string(id), r.Label, r.Payload, r.Revealed)
	return err
}

// Result retrieves the revealed result for a request id.
func (s *PostgresStore) Result(id ledger.RequestID) (*ledger.RevealedResult, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &ledger.RevealedResult{}
	err := s.db.QueryRowContext(ctx, `
		SELECT label, payload, revealed FROM revealed_results WHERE request_id = $1`,
		string(id),
	).Scan(&r.Label, &r.Payload, &r.Revealed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
