package storage

// sqlite.go: journal de auditoría del dashboard.
//
// Tablas:
//   - `trades`: un registro por intento de compra o venta, con éxito o error.
//   - `signals`: señales recibidas. Cache en memoria por símbolo: si la
//     predicción y la confianza no cambiaron, no se reescribe.
//   - `notifications`: todo lo que se mostró al usuario.
//   - Prune automático al arrancar: trades > 90d, el resto > 7d.
//
// No guarda la sesión: el token vive solo en memoria.

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/alejandrodnm/xtrader/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id          TEXT PRIMARY KEY,
    action      TEXT     NOT NULL,   -- buy / sell
    user_id     TEXT     NOT NULL,
    symbol      TEXT     NOT NULL DEFAULT '',
    direction   TEXT     NOT NULL DEFAULT '',
    stake       TEXT     NOT NULL DEFAULT '0',
    contract_id TEXT     NOT NULL DEFAULT '',
    success     INTEGER  NOT NULL DEFAULT 0,
    error       TEXT,
    at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol      TEXT     NOT NULL,
    prediction  TEXT     NOT NULL,
    confidence  REAL     NOT NULL DEFAULT 0,
    reason      TEXT,
    fallback    INTEGER  NOT NULL DEFAULT 0,
    at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    seq         INTEGER  NOT NULL,
    severity    TEXT     NOT NULL,
    message     TEXT     NOT NULL,
    at          DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_at  ON trades(at DESC);
CREATE INDEX IF NOT EXISTS idx_signals_at ON signals(symbol, at DESC);
`

const (
	retentionTrades  = 90 * 24 * time.Hour
	retentionSignals = 7 * 24 * time.Hour
	retentionNotes   = 7 * 24 * time.Hour
)

// cachedSignal es lo último guardado para un símbolo.
type cachedSignal struct {
	prediction domain.Prediction
	confidence float64
	fallback   bool
}

// SQLiteJournal implementa ports.Journal usando SQLite (pure Go, sin CGo).
type SQLiteJournal struct {
	db    *sql.DB
	cache map[string]cachedSignal // symbol → última señal guardada
	mu    sync.Mutex
}

// NewSQLiteJournal abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	j := &SQLiteJournal{
		db:    db,
		cache: make(map[string]cachedSignal),
	}
	j.pruneOld(context.Background())
	return j, nil
}

// RecordTrade guarda un intento de trade. Si el registro no trae ID se le
// asigna uno.
func (j *SQLiteJournal) RecordTrade(ctx context.Context, rec domain.TradeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	var errStr *string
	if rec.Error != "" {
		errStr = &rec.Error
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades
		  (id, action, user_id, symbol, direction, stake, contract_id, success, error, at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Action, rec.UserID, rec.Symbol, rec.Direction, rec.Stake.String(),
		rec.ContractID, boolToInt(rec.Success), errStr, rec.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.RecordTrade: insert %s: %w", rec.ID, err)
	}
	return nil
}

// RecordSignal guarda la señal si cambió respecto a la última del símbolo.
func (j *SQLiteJournal) RecordSignal(ctx context.Context, sig domain.Signal) error {
	if !j.signalChanged(sig) {
		return nil
	}
	at := sig.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO signals (symbol, prediction, confidence, reason, fallback, at) VALUES (?,?,?,?,?,?)`,
		sig.Symbol, string(sig.Prediction), sig.Confidence, sig.Reason, boolToInt(sig.Fallback), at.UTC(),
	)
	if err != nil {
		j.forgetSignal(sig.Symbol)
		return fmt.Errorf("storage.RecordSignal: insert %s: %w", sig.Symbol, err)
	}
	return nil
}

// RecordNotification guarda una notificación mostrada.
func (j *SQLiteJournal) RecordNotification(ctx context.Context, n domain.Notification) error {
	at := n.ShownAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO notifications (seq, severity, message, at) VALUES (?,?,?,?)`,
		n.ID, string(n.Severity), n.Message, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.RecordNotification: insert: %w", err)
	}
	return nil
}

// RecentTrades devuelve los últimos limit trades, más recientes primero.
func (j *SQLiteJournal) RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, action, user_id, symbol, direction, stake, contract_id, success, error, at
		FROM trades
		ORDER BY at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentTrades: query: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		var stake string
		var success int
		var errStr sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.UserID, &rec.Symbol, &rec.Direction,
			&stake, &rec.ContractID, &success, &errStr, &rec.At); err != nil {
			return nil, fmt.Errorf("storage.RecentTrades: scan row: %w", err)
		}
		rec.Stake, err = decimal.NewFromString(stake)
		if err != nil {
			return nil, fmt.Errorf("storage.RecentTrades: stake %q: %w", stake, err)
		}
		rec.Success = success != 0
		rec.Error = errStr.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountSignals devuelve cuántas señales hay guardadas para el símbolo.
func (j *SQLiteJournal) CountSignals(ctx context.Context, symbol string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signals WHERE symbol=?`, symbol).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage.CountSignals: %w", err)
	}
	return n, nil
}

// CountNotifications devuelve cuántas notificaciones hay guardadas.
func (j *SQLiteJournal) CountNotifications(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage.CountNotifications: %w", err)
	}
	return n, nil
}

// Close cierra la conexión a la base de datos.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// --- helpers internos ---

// signalChanged compara con la caché y la actualiza.
func (j *SQLiteJournal) signalChanged(sig domain.Signal) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	next := cachedSignal{prediction: sig.Prediction, confidence: sig.Confidence, fallback: sig.Fallback}
	if prev, ok := j.cache[sig.Symbol]; ok && prev == next {
		return false
	}
	j.cache[sig.Symbol] = next
	return true
}

func (j *SQLiteJournal) forgetSignal(symbol string) {
	j.mu.Lock()
	delete(j.cache, symbol)
	j.mu.Unlock()
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (j *SQLiteJournal) pruneOld(ctx context.Context) {
	now := time.Now().UTC()
	j.db.ExecContext(ctx, `DELETE FROM trades WHERE at < ?`, now.Add(-retentionTrades))
	j.db.ExecContext(ctx, `DELETE FROM signals WHERE at < ?`, now.Add(-retentionSignals))
	j.db.ExecContext(ctx, `DELETE FROM notifications WHERE at < ?`, now.Add(-retentionNotes))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
