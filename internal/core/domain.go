package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Expense is a spending record stored by the finance API.
	Expense struct {
		Title  string
		Amount Money
	}

	// Income is an earning record stored by the finance API.
	Income struct {
		Source string
		Amount Money
	}

	// DashboardSummary holds the totals computed by the finance API.
	// The tracker only displays these values.
	DashboardSummary struct {
		TotalIncome   Money
		TotalExpenses Money
		Balance       Money
	}
)

var (
	ErrMissingFields = errors.New("Please fill all fields")
	ErrInvalidAmount = errors.New("Please enter a valid amount")
)

// Validate reports ErrMissingFields for a blank title and ErrInvalidAmount
// for a non-positive amount.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingFields
	}
	return e.Amount.Validate()
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return ErrMissingFields
	}
	return i.Amount.Validate()
}

// RecordKind tells which list a record belongs to.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

// RecordCreated is emitted after the finance API accepted a new record.
type RecordCreated struct {
	Kind      RecordKind `json:"kind"`
	Label     string     `json:"label"`
	Amount    string     `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}
