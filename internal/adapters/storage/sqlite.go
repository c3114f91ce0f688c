package storage

// sqlite.go — registro de posiciones append-only.
//
// Una fila por intento de orden (real o simulado). La resolución marca la
// fila con un UPDATE; nada se borra nunca. El ledger reconstruye su estado
// leyendo este log, así que las filas llevan todo lo necesario: key,
// coste, simulated, resolved y timestamp.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/weatherbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id           TEXT PRIMARY KEY,
    position_key TEXT NOT NULL,
    market_slug  TEXT NOT NULL,
    bucket_label TEXT NOT NULL,
    token_id     TEXT NOT NULL DEFAULT '',
    question     TEXT NOT NULL DEFAULT '',
    city         TEXT NOT NULL DEFAULT '',
    side         TEXT NOT NULL DEFAULT 'BUY_YES',
    probability  REAL NOT NULL DEFAULT 0,
    price        REAL NOT NULL DEFAULT 0,
    edge         REAL NOT NULL DEFAULT 0,
    shares       REAL NOT NULL DEFAULT 0,
    stake        REAL NOT NULL DEFAULT 0,
    cost         REAL NOT NULL DEFAULT 0,
    simulated    INTEGER NOT NULL DEFAULT 0,
    resolved     INTEGER NOT NULL DEFAULT 0,
    outcome      TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL,
    resolved_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_positions_key     ON positions(position_key);
CREATE INDEX IF NOT EXISTS idx_positions_created ON positions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_positions_open    ON positions(resolved, simulated);
`

// SQLiteStore implementa ports.PositionStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append registra una posición recién abierta.
func (s *SQLiteStore) Append(ctx context.Context, p domain.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (
			id, position_key, market_slug, bucket_label, token_id, question,
			city, side, probability, price, edge, shares, stake, cost,
			simulated, resolved, outcome, created_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Key, p.MarketSlug, p.BucketLabel, p.TokenID, p.Question,
		p.City, p.Side, p.Probability, p.Price, p.Edge, p.Shares, p.Stake,
		p.Cost, boolInt(p.Simulated), boolInt(p.Resolved), p.Outcome,
		p.CreatedAt.UTC(), p.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("storage.Append %s: %w", p.Key, err)
	}
	return nil
}

// MarkResolved marca una posición como resuelta con su resultado.
func (s *SQLiteStore) MarkResolved(ctx context.Context, id string, outcome string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET resolved = 1, outcome = ?, resolved_at = ?
		WHERE id = ?`,
		outcome, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("storage.MarkResolved %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.MarkResolved %s: no such position", id)
	}
	return nil
}

// ReadSince devuelve las posiciones creadas a partir del instante dado,
// más antiguas primero.
func (s *SQLiteStore) ReadSince(ctx context.Context, since time.Time) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM positions WHERE created_at >= ? ORDER BY created_at ASC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.ReadSince: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// ReadAll devuelve todas las posiciones, más recientes primero.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM positions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage.ReadAll: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// Close cierra la conexión.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `
	SELECT id, position_key, market_slug, bucket_label, token_id, question,
	       city, side, probability, price, edge, shares, stake, cost,
	       simulated, resolved, outcome, created_at, resolved_at`

func scanPositions(rows *sql.Rows) ([]domain.Position, error) {
	var out []domain.Position
	for rows.Next() {
		var p domain.Position
		var simulated, resolved int
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.Key, &p.MarketSlug, &p.BucketLabel, &p.TokenID,
			&p.Question, &p.City, &p.Side, &p.Probability, &p.Price,
			&p.Edge, &p.Shares, &p.Stake, &p.Cost,
			&simulated, &resolved, &p.Outcome, &p.CreatedAt, &resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: scan position: %w", err)
		}
		p.Simulated = simulated != 0
		p.Resolved = resolved != 0
		if resolvedAt.Valid {
			t := resolvedAt.Time
			p.ResolvedAt = &t
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate positions: %w", err)
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
