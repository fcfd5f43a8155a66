package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateUserSeedsDefaultCategories(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	cats, err := store.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cats, 6)

	byID := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	for _, want := range core.DefaultCategories(user.ID) {
		got, ok := byID[want.ID]
		require.True(t, ok, "missing seeded category %s", want.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Color, got.Color)
		assert.Equal(t, user.ID, got.UserID)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.CreateUser(ctx, "alice", "hash-1")
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "alice", "hash-2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// First user and its seeded categories are untouched.
	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	cats, err := store.ListCategories(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 6)
}

func TestGetUserNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	cat, err := store.GetCategory(ctx, user.ID, core.NamespacedCategoryID(user.ID, "c1"))
	require.NoError(t, err)

	created, err := store.CreateTransaction(ctx, core.Transaction{
		Type:          core.Expense,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		CategoryColor: cat.Color,
		Amount:        42.5,
		Date:          "2024-03-01",
		UserID:        user.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// Round trip: the listed row matches what create returned.
	txs, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, created, txs[0])

	created.Amount = 50
	created.Type = core.Income
	updated, err := store.UpdateTransaction(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.Amount)

	require.NoError(t, store.DeleteTransaction(ctx, user.ID, created.ID))
	txs, err = store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)

	assert.ErrorIs(t, store.DeleteTransaction(ctx, user.ID, created.ID), ErrNotFound)
}

func TestCategorySnapshotIsDecoupled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	catID := core.NamespacedCategoryID(user.ID, "c1")
	cat, err := store.GetCategory(ctx, user.ID, catID)
	require.NoError(t, err)

	created, err := store.CreateTransaction(ctx, core.Transaction{
		Type:          core.Expense,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		CategoryColor: cat.Color,
		Amount:        10,
		Date:          "2024-03-01",
		UserID:        user.ID,
	})
	require.NoError(t, err)

	// Renaming the category must not rewrite the snapshot on the
	// existing transaction.
	_, err = store.UpdateCategory(ctx, user.ID, catID, "Groceries", "#000000")
	require.NoError(t, err)

	txs, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Food", txs[0].CategoryName)
	assert.Equal(t, "#FF6384", txs[0].CategoryColor)

	// And updating the transaction with a fresh snapshot must not touch
	// the category itself.
	created.CategoryName = "Groceries"
	created.CategoryColor = "#000000"
	_, err = store.UpdateTransaction(ctx, created)
	require.NoError(t, err)

	got, err := store.GetCategory(ctx, user.ID, catID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
}

func TestTenantIsolation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob", "hash")
	require.NoError(t, err)

	cat, err := store.GetCategory(ctx, alice.ID, core.NamespacedCategoryID(alice.ID, "c1"))
	require.NoError(t, err)

	tx, err := store.CreateTransaction(ctx, core.Transaction{
		Type: core.Expense, CategoryID: cat.ID, CategoryName: cat.Name,
		CategoryColor: cat.Color, Amount: 5, Date: "2024-01-01", UserID: alice.ID,
	})
	require.NoError(t, err)

	goal, err := store.CreateGoal(ctx, core.Goal{Name: "Car", TargetAmount: 100, UserID: alice.ID})
	require.NoError(t, err)

	// Bob cannot see, edit or delete Alice's rows.
	txs, err := store.ListTransactions(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = store.GetCategory(ctx, bob.ID, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tx.UserID = bob.ID
	_, err = store.UpdateTransaction(ctx, tx)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteTransaction(ctx, bob.ID, tx.ID), ErrNotFound)
	assert.ErrorIs(t, store.DeleteGoal(ctx, bob.ID, goal.ID), ErrNotFound)
	assert.ErrorIs(t, store.DeleteCategory(ctx, bob.ID, cat.ID), ErrNotFound)

	// Alice's data is still intact after Bob's attempts.
	txs, err = store.ListTransactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 5.0, txs[0].Amount)
}

func TestDeleteUserCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	cat, err := store.GetCategory(ctx, user.ID, core.NamespacedCategoryID(user.ID, "c1"))
	require.NoError(t, err)

	_, err = store.CreateTransaction(ctx, core.Transaction{
		Type: core.Expense, CategoryID: cat.ID, CategoryName: cat.Name,
		CategoryColor: cat.Color, Amount: 5, Date: "2024-01-01", UserID: user.ID,
	})
	require.NoError(t, err)

	_, err = store.CreateGoal(ctx, core.Goal{Name: "Car", TargetAmount: 100, UserID: user.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, user.ID))

	_, err = store.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cats, err := store.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)

	txs, err := store.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)

	goals, err := store.ListGoals(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoalCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	deadline := "2025-12-31"
	created, err := store.CreateGoal(ctx, core.Goal{
		Name: "House", TargetAmount: 50000, CurrentSavings: 100,
		Deadline: &deadline, UserID: user.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	goals, err := store.ListGoals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, created, goals[0])

	// Deadline is optional; clearing it persists NULL.
	created.Deadline = nil
	created.CurrentSavings = 200
	_, err = store.UpdateGoal(ctx, created)
	require.NoError(t, err)

	goals, err = store.ListGoals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Nil(t, goals[0].Deadline)
	assert.Equal(t, 200.0, goals[0].CurrentSavings)

	require.NoError(t, store.DeleteGoal(ctx, user.ID, created.ID))
	assert.ErrorIs(t, store.DeleteGoal(ctx, user.ID, created.ID), ErrNotFound)
}

func TestCategoryCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "hash")
	require.NoError(t, err)

	created, err := store.CreateCategory(ctx, user.ID, "gifts", "Gifts", "#ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, core.NamespacedCategoryID(user.ID, "gifts"), created.ID)

	updated, err := store.UpdateCategory(ctx, user.ID, created.ID, "Presents", "#123456")
	require.NoError(t, err)
	assert.Equal(t, "Presents", updated.Name)

	require.NoError(t, store.DeleteCategory(ctx, user.ID, created.ID))

	_, err = store.GetCategory(ctx, user.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
