package app

import (
	"errors"
	"fmt"
)

// Section is one of the mutually exclusive views of the tracker.
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionExpenses  Section = "expenses"
	SectionIncome    Section = "income"
)

// Sections lists every section in navigation order.
var Sections = []Section{SectionDashboard, SectionExpenses, SectionIncome}

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownControl = errors.New("unknown control")
)

// ParseSection matches name exactly against the known sections.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Control is a navigation button. The router marks the control that
// triggered a switch as active, so callers must pass it explicitly.
type Control struct {
	ID      string
	Label   string
	Section Section
}

var (
	DashboardButton = Control{ID: "dashboardBtn", Label: "Dashboard", Section: SectionDashboard}
	ExpensesButton  = Control{ID: "expensesBtn", Label: "Expenses", Section: SectionExpenses}
	IncomeButton    = Control{ID: "incomeBtn", Label: "Income", Section: SectionIncome}

	// NavControls is the navigation bar in display order.
	NavControls = []Control{DashboardButton, ExpensesButton, IncomeButton}
)

// ControlByID finds a navigation button by its element id.
func ControlByID(id string) (Control, bool) {
	for _, c := range NavControls {
		if c.ID == id {
			return c, true
		}
	}
	return Control{}, false
}

// DashboardView holds the totals as display strings.
type DashboardView struct {
	TotalIncome   string
	TotalExpenses string
	Balance       string
}

// ListItem is one rendered expense or income row.
type ListItem struct {
	Label  string
	Amount string
}

// ExpenseForm mirrors the expense inputs.
type ExpenseForm struct {
	Title  string `validate:"required"`
	Amount string `validate:"required"`
}

// IncomeForm mirrors the income inputs.
type IncomeForm struct {
	Source string `validate:"required"`
	Amount string `validate:"required"`
}

// State is everything the page shows. It is only mutated through
// Tracker.update.
type State struct {
	Active        Section
	ActiveControl Control
	Dashboard     DashboardView
	Expenses      []ListItem
	Income        []ListItem
	ExpenseForm   ExpenseForm
	IncomeForm    IncomeForm
	Alert         string
}

func initialState(symbol string) State {
	zero := symbol + "0.00"
	return State{
		Active:        SectionDashboard,
		ActiveControl: DashboardButton,
		Dashboard:     DashboardView{TotalIncome: zero, TotalExpenses: zero, Balance: zero},
	}
}

// Visible reports whether sec is the active section.
func (s State) Visible(sec Section) bool {
	return s.Active == sec
}

// ControlActive reports whether c is the highlighted navigation button.
func (s State) ControlActive(c Control) bool {
	return s.ActiveControl.ID == c.ID
}

// Validate checks that exactly one section and one navigation button are active.
func (s State) Validate() error {
	active := 0
	for _, sec := range Sections {
		if s.Visible(sec) {
			active++
		}
	}
	if active != 1 {
		return fmt.Errorf("%d active sections, want exactly 1", active)
	}
	buttons := 0
	for _, c := range NavControls {
		if s.ControlActive(c) {
			buttons++
		}
	}
	if buttons != 1 {
		return fmt.Errorf("%d active controls, want exactly 1", buttons)
	}
	return nil
}

func (s State) clone() State {
	c := s
	c.Expenses = append([]ListItem(nil), s.Expenses...)
	c.Income = append([]ListItem(nil), s.Income...)
	return c
}
