package finance

import (
	"context"

	"pft/internal/core"
)

// Ports for the external finance API.
type (
	DashboardReader interface {
		// ReadDashboard returns the totals as computed by the API.
		ReadDashboard(ctx context.Context) (core.DashboardSummary, error)
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) error
	}

	IncomeLister interface {
		ListIncome(ctx context.Context) ([]core.Income, error)
	}

	IncomeWriter interface {
		CreateIncome(ctx context.Context, i core.Income) error
	}

	// API is everything the tracker needs from the finance backend.
	API interface {
		DashboardReader
		ExpenseLister
		ExpenseWriter
		IncomeLister
		IncomeWriter
	}
)
