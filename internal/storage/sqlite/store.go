package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/storage"
)

// Store is a SQLite implementation of HistoryStore.
type Store struct {
	db *sql.DB
}

var _ storage.HistoryStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			root_dir TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			original_config TEXT,
			config TEXT,
			host_values TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			invocation_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			mode TEXT NOT NULL,
			config TEXT NOT NULL,
			PRIMARY KEY (invocation_id, position),
			FOREIGN KEY (invocation_id) REFERENCES invocations(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_command ON invocations(command)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_root ON invocations(root_dir)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) RecordInvocation(ctx context.Context, inv *domain.Invocation) error {
	if inv.ID == "" {
		return fmt.Errorf("invocation id cannot be empty")
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	original, err := marshalNullable(inv.OriginalConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal original config: %w", err)
	}
	cfg, err := marshalNullable(inv.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	values, err := marshalNullable(inv.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO invocations (id, command, root_dir, status, error, duration_ns, original_config, config, host_values, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		inv.ID, string(inv.Command), inv.RootDir, string(inv.Status), nullString(inv.Error),
		inv.Duration.Nanoseconds(), original, cfg, values, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}

	for i, t := range inv.Tasks {
		data, err := json.Marshal(t.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal task %s: %w", t.Name, err)
		}
		mode := ""
		if t.Config != nil {
			mode = string(t.Config.Mode)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (invocation_id, position, name, mode, config) VALUES (?, ?, ?, ?, ?)`,
			inv.ID, i, t.Name, mode, string(data))
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invocation: %w", err)
	}
	return nil
}

func (s *Store) GetInvocation(ctx context.Context, id string) (*domain.Invocation, error) {
	query := `SELECT id, command, root_dir, status, error, duration_ns, original_config, config, host_values, created_at
	          FROM invocations WHERE id = ?`

	var (
		inv                           domain.Invocation
		command, status               string
		errMsg, original, cfg, values sql.NullString
		durationNS                    int64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &command, &inv.RootDir, &status, &errMsg, &durationNS, &original, &cfg, &values, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invocation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}

	inv.Command = domain.Command(command)
	inv.Status = domain.InvocationStatus(status)
	inv.Error = errMsg.String
	inv.Duration = time.Duration(durationNS)

	if original.Valid {
		if err := json.Unmarshal([]byte(original.String), &inv.OriginalConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal original config: %w", err)
		}
	}
	if cfg.Valid {
		if err := json.Unmarshal([]byte(cfg.String), &inv.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if values.Valid {
		if err := json.Unmarshal([]byte(values.String), &inv.Values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal values: %w", err)
		}
	}

	tasks, err := s.getTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Tasks = tasks

	return &inv, nil
}

func (s *Store) getTasks(ctx context.Context, invocationID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, config FROM tasks WHERE invocation_id = ? ORDER BY position ASC`, invocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var (
			t    domain.Task
			data string
		)
		if err := rows.Scan(&t.Name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Config = &domain.ChainConfig{}
		if err := json.Unmarshal([]byte(data), t.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task %s: %w", t.Name, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) ListInvocations(ctx context.Context, opts storage.ListOptions) ([]*domain.InvocationSummary, error) {
	var (
		where []string
		args  []any
	)
	if opts.Command != "" {
		where = append(where, "i.command = ?")
		args = append(args, string(opts.Command))
	}
	if opts.RootDir != "" {
		where = append(where, "i.root_dir = ?")
		args = append(args, opts.RootDir)
	}

	query := `SELECT i.id, i.command, i.root_dir, i.status, i.duration_ns, i.created_at,
	                 (SELECT COUNT(*) FROM tasks t WHERE t.invocation_id = i.id)
	          FROM invocations i`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.created_at DESC LIMIT ? OFFSET ?"

	limit := opts.Limit
	if limit == 0 {
		limit = storage.DefaultListLimit
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var out []*domain.InvocationSummary
	for rows.Next() {
		var (
			sum             domain.InvocationSummary
			command, status string
			durationNS      int64
		)
		if err := rows.Scan(&sum.ID, &command, &sum.RootDir, &status, &durationNS, &sum.CreatedAt, &sum.Tasks); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		sum.Command = domain.Command(command)
		sum.Status = domain.InvocationStatus(status)
		sum.Duration = time.Duration(durationNS)
		out = append(out, &sum)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func marshalNullable(m map[string]any) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
