package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	User struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		PasswordHash string `json:"-"`
	}

	Category struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Color  string `json:"color"`
		UserID int64  `json:"user_id"`
	}

	Transaction struct {
		ID   int64           `json:"id"`
		Type TransactionType `json:"type"`
		// Category fields are a snapshot taken when the transaction is
		// written; later edits to the category never rewrite them.
		CategoryID    string  `json:"category_id"`
		CategoryName  string  `json:"category_name"`
		CategoryColor string  `json:"category_color"`
		Amount        float64 `json:"amount"`
		Date          string  `json:"date"`
		UserID        int64   `json:"user_id"`
	}

	Goal struct {
		ID             int64   `json:"id"`
		Name           string  `json:"name"`
		TargetAmount   float64 `json:"target_amount"`
		CurrentSavings float64 `json:"current_savings"`
		Deadline       *string `json:"deadline"`
		UserID         int64   `json:"user_id"`
	}
)

var (
	ErrEmptyUsername  = errors.New("empty username")
	ErrEmptyPassword  = errors.New("empty password")
	ErrInvalidType    = errors.New("transaction type must be Income or Expense")
	ErrEmptyCategory  = errors.New("empty category id")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyDate      = errors.New("empty date")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidTarget  = errors.New("invalid target amount")
	ErrInvalidSavings = errors.New("invalid current savings")
	ErrEmptyColor     = errors.New("empty color")
)

// Validate checks the transaction type against the allowed set.
func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if g.TargetAmount <= 0 || math.IsNaN(g.TargetAmount) || math.IsInf(g.TargetAmount, 0) {
		return ErrInvalidTarget
	}
	if g.CurrentSavings < 0 || math.IsNaN(g.CurrentSavings) || math.IsInf(g.CurrentSavings, 0) {
		return ErrInvalidSavings
	}
	return nil
}

// ParseDate validates a date string in YYYY-MM-DD format.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// DefaultCategories returns the six categories seeded for every new user,
// with ids namespaced as "<userID>-c1".."<userID>-c6".
func DefaultCategories(userID int64) []Category {
	defaults := []struct {
		slug, name, color string
	}{
		{"c1", "Food", "#FF6384"},
		{"c2", "Transportation", "#36A2EB"},
		{"c3", "Utilities", "#FFCE56"},
		{"c4", "Entertainment", "#4BC0C0"},
		{"c5", "Salary", "#9966FF"},
		{"c6", "Other", "#C9CBCF"},
	}

	cats := make([]Category, 0, len(defaults))
	for _, d := range defaults {
		cats = append(cats, Category{
			ID:     NamespacedCategoryID(userID, d.slug),
			Name:   d.name,
			Color:  d.color,
			UserID: userID,
		})
	}
	return cats
}

// NamespacedCategoryID builds the per-user category primary key. Caller
// supplied slugs stay unique across tenants because the user id prefixes them.
func NamespacedCategoryID(userID int64, slug string) string {
	return fmt.Sprintf("%d-%s", userID, slug)
}
