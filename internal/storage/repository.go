// Package storage is the SQLite implementation of the store ports. Schema
// changes go through embedded migrations, never ad hoc DDL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendsight/internal/core"
	"spendsight/internal/store"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner, title, amount, category, date, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Owner, e.Title, e.Amount, string(e.Category), e.Date.Format(time.RFC3339), e.Description)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "expense saved",
		"component", "storage", "id", e.ID, "category", e.Category, "amount", e.Amount)
	return e, nil
}

func (s *SQLiteStore) GetExpense(ctx context.Context, owner, id string) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, amount, category, date, description
		 FROM expenses WHERE id = ? AND owner = ?`, id, owner)
	return scanExpense(row)
}

func (s *SQLiteStore) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET title = ?, amount = ?, category = ?, date = ?, description = ?
		 WHERE id = ? AND owner = ?`,
		e.Title, e.Amount, string(e.Category), e.Date.Format(time.RFC3339), e.Description, e.ID, e.Owner)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteExpense(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, owner, title, amount, category, date, description
	          FROM expenses WHERE owner = ?`
	args := []any{f.Owner}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.Format(time.RFC3339))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(f.Category))
	}
	query += ` ORDER BY date DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, owner, category, month, limit_amount, alert_threshold, description, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Owner, string(b.Category), string(b.Month), b.Limit, b.AlertThreshold, b.Description, b.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Budget{}, store.ErrDuplicateBudget
		}
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "budget saved",
		"component", "storage", "id", b.ID, "category", b.Category, "month", b.Month)
	return b, nil
}

func (s *SQLiteStore) GetBudget(ctx context.Context, owner, id string) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, category, month, limit_amount, alert_threshold, description, active
		 FROM budgets WHERE id = ? AND owner = ?`, id, owner)
	return scanBudget(row)
}

func (s *SQLiteStore) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, month = ?, limit_amount = ?, alert_threshold = ?,
		        description = ?, active = ?
		 WHERE id = ? AND owner = ?`,
		string(b.Category), string(b.Month), b.Limit, b.AlertThreshold, b.Description, b.Active, b.ID, b.Owner)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateBudget
		}
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, owner string, month core.Month, activeOnly bool) ([]core.Budget, error) {
	query := `SELECT id, owner, category, month, limit_amount, alert_threshold, description, active
	          FROM budgets WHERE owner = ?`
	args := []any{owner}
	if month != "" {
		query += ` AND month = ?`
		args = append(args, string(month))
	}
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY month, category, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveDigest(ctx context.Context, d core.InsightDigest) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insight_digests (id, owner, month, anomalies, trends, recommendations, savings, provider, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Owner, string(d.Month), d.Anomalies, d.Trends, d.Recommendations, d.Savings,
		d.Provider, d.GeneratedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert digest: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDigests(ctx context.Context, owner string, limit int) ([]core.InsightDigest, error) {
	query := `SELECT id, owner, month, anomalies, trends, recommendations, savings, provider, generated_at
	          FROM insight_digests WHERE owner = ? ORDER BY generated_at DESC`
	args := []any{owner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()

	out := make([]core.InsightDigest, 0)
	for rows.Next() {
		var d core.InsightDigest
		var month, generatedAt string
		if err := rows.Scan(&d.ID, &d.Owner, &month, &d.Anomalies, &d.Trends,
			&d.Recommendations, &d.Savings, &d.Provider, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan digest: %w", err)
		}
		d.Month = core.Month(month)
		if d.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
			return nil, fmt.Errorf("parse digest timestamp: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var category, date string
	err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Amount, &category, &date, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Category = core.Category(category)
	if e.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date: %w", err)
	}
	return e, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var category, month string
	err := row.Scan(&b.ID, &b.Owner, &category, &month, &b.Limit, &b.AlertThreshold, &b.Description, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.Category = core.Category(category)
	b.Month = core.Month(month)
	return b, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
