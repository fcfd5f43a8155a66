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

	"fintrack/internal/core"

	sqlite "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store persists users, categories, transactions and goals in SQLite.
// Every read and write on owned entities takes the caller's user id and
// filters by it, so tenant isolation is enforced here rather than in each
// handler.
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates, if needed) the database at dbPath and runs
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Foreign keys must be on for user deletion to cascade.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
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

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		// SQLITE_CONSTRAINT_UNIQUE
		return se.Code() == 2067
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts a user and seeds the six default categories in one
// transaction. A duplicate username rolls everything back and returns
// ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}

	for _, c := range core.DefaultCategories(id) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, color, user_id) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Color, c.UserID); err != nil {
			return core.User{}, fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.User{}, fmt.Errorf("commit user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", id, "username", username)
	return core.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetUserByID resolves a user id to its persisted record.
func (s *Store) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// DeleteUser removes the user; categories, transactions and goals go with it
// via the foreign key cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}

// --- Categories ---

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, user_id FROM categories WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, userID int64, id string) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, user_id FROM categories WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.Name, &c.Color, &c.UserID)
	if err == sql.ErrNoRows {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category under the caller's namespace. The slug
// from the request body becomes "<userID>-<slug>".
func (s *Store) CreateCategory(ctx context.Context, userID int64, slug, name, color string) (core.Category, error) {
	c := core.Category{
		ID:     core.NamespacedCategoryID(userID, slug),
		Name:   name,
		Color:  color,
		UserID: userID,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color, user_id) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "user_id", userID, "category_id", c.ID)
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, userID int64, id, name, color string) (core.Category, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ? WHERE id = ? AND user_id = ?`,
		name, color, id, userID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category rows affected: %w", err)
	}
	if n == 0 {
		return core.Category{}, ErrNotFound
	}
	return core.Category{ID: id, Name: name, Color: color, UserID: userID}, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Transactions ---

func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, category_id, category_name, category_color, amount, date, user_id
		 FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.CategoryID, &t.CategoryName,
			&t.CategoryColor, &t.Amount, &t.Date, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CreateTransaction persists a transaction carrying the category snapshot
// the handler captured at write time.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (type, category_id, category_name, category_color, amount, date, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Type, t.CategoryID, t.CategoryName, t.CategoryColor, t.Amount, t.Date, t.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction created",
		"user_id", t.UserID,
		"transaction_id", t.ID,
		"type", string(t.Type),
		"amount", t.Amount)
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, category_id = ?, category_name = ?, category_color = ?, amount = ?, date = ?
		 WHERE id = ? AND user_id = ?`,
		t.Type, t.CategoryID, t.CategoryName, t.CategoryColor, t.Amount, t.Date, t.ID, t.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Goals ---

func (s *Store) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_savings, deadline, user_id
		 FROM goals WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func scanGoal(rows *sql.Rows) (core.Goal, error) {
	var g core.Goal
	var deadline sql.NullString
	if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentSavings,
		&deadline, &g.UserID); err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	if deadline.Valid {
		g.Deadline = &deadline.String
	}
	return g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var deadline sql.NullString
	if g.Deadline != nil {
		deadline = sql.NullString{String: *g.Deadline, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (name, target_amount, current_savings, deadline, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.TargetAmount, g.CurrentSavings, deadline, g.UserID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}
	g.ID = id

	slog.InfoContext(ctx, "Goal created", "user_id", g.UserID, "goal_id", g.ID, "name", g.Name)
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var deadline sql.NullString
	if g.Deadline != nil {
		deadline = sql.NullString{String: *g.Deadline, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_amount = ?, current_savings = ?, deadline = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount, g.CurrentSavings, deadline, g.ID, g.UserID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal rows affected: %w", err)
	}
	if n == 0 {
		return core.Goal{}, ErrNotFound
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
