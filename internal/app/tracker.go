// Package app holds the finance tracker's page state and the operations
// that change it: section routing, loaders and the add forms.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"pft/internal/core"
	"pft/internal/finance"
	"pft/internal/log"
)

// Publisher receives an event for every record the API accepted.
type Publisher interface {
	PublishRecordCreated(ctx context.Context, ev core.RecordCreated) error
}

// Tracker owns the State and talks to the finance API. It is safe for
// concurrent use; API calls are made without holding the state lock.
type Tracker struct {
	api       finance.API
	publisher Publisher
	logger    *log.Logger
	symbol    string
	validate  *validator.Validate

	mu    sync.Mutex
	state State

	// per-section load tickets, so a slow response never overwrites a newer one
	issued  map[Section]uint64
	applied map[Section]uint64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPublisher sets the destination of record-created events.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

// WithLogger sets the logger used for load and add failures.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithCurrencySymbol changes the prefix used for amounts (default "$").
func WithCurrencySymbol(symbol string) Option {
	return func(t *Tracker) { t.symbol = symbol }
}

// NewTracker builds a tracker showing the dashboard. Nothing is loaded
// until LoadDashboard or SwitchSection is called.
func NewTracker(api finance.API, opts ...Option) *Tracker {
	t := &Tracker{
		api:      api,
		logger:   log.New(log.DefaultConfig()),
		symbol:   "$",
		validate: validator.New(),
		issued:   make(map[Section]uint64),
		applied:  make(map[Section]uint64),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state = initialState(t.symbol)
	return t
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

func (t *Tracker) update(fn func(*State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.state)
}

// SwitchSection activates the named section and the control that
// triggered it, then runs that section's loader.
func (t *Tracker) SwitchSection(ctx context.Context, name string, trigger Control) error {
	sec, err := ParseSection(name)
	if err != nil {
		return err
	}
	ctrl, ok := ControlByID(trigger.ID)
	if !ok {
		return ErrUnknownControl
	}

	t.update(func(s *State) {
		s.Active = sec
		s.ActiveControl = ctrl
		s.Alert = ""
	})
	t.logger.WithComponent(log.ComponentRouter).DebugContext(ctx, "Section switched",
		log.FieldOperation, log.OpSwitch, log.FieldSection, string(sec), log.FieldControl, ctrl.ID)

	t.Load(ctx, sec)
	return nil
}

// Load runs the loader of sec.
func (t *Tracker) Load(ctx context.Context, sec Section) {
	switch sec {
	case SectionDashboard:
		t.LoadDashboard(ctx)
	case SectionExpenses:
		t.LoadExpenses(ctx)
	case SectionIncome:
		t.LoadIncome(ctx)
	}
}

// LoadDashboard fetches the totals. On failure the error is logged and the
// previously displayed values stay.
func (t *Tracker) LoadDashboard(ctx context.Context) {
	ticket := t.ticket(SectionDashboard)
	sum, err := t.api.ReadDashboard(ctx)
	if err != nil {
		t.loadFailed(ctx, SectionDashboard, err)
		return
	}
	view := DashboardView{
		TotalIncome:   sum.TotalIncome.Format(t.symbol),
		TotalExpenses: sum.TotalExpenses.Format(t.symbol),
		Balance:       sum.Balance.Format(t.symbol),
	}
	t.commit(ctx, SectionDashboard, ticket, func(s *State) { s.Dashboard = view })
}

// LoadExpenses replaces the expense list with the API's records.
func (t *Tracker) LoadExpenses(ctx context.Context) {
	ticket := t.ticket(SectionExpenses)
	items, err := t.api.ListExpenses(ctx)
	if err != nil {
		t.loadFailed(ctx, SectionExpenses, err)
		return
	}
	rows := make([]ListItem, 0, len(items))
	for _, e := range items {
		rows = append(rows, ListItem{Label: e.Title, Amount: e.Amount.Format(t.symbol)})
	}
	t.commit(ctx, SectionExpenses, ticket, func(s *State) { s.Expenses = rows })
}

// LoadIncome replaces the income list with the API's records.
func (t *Tracker) LoadIncome(ctx context.Context) {
	ticket := t.ticket(SectionIncome)
	items, err := t.api.ListIncome(ctx)
	if err != nil {
		t.loadFailed(ctx, SectionIncome, err)
		return
	}
	rows := make([]ListItem, 0, len(items))
	for _, i := range items {
		rows = append(rows, ListItem{Label: i.Source, Amount: i.Amount.Format(t.symbol)})
	}
	t.commit(ctx, SectionIncome, ticket, func(s *State) { s.Income = rows })
}

func (t *Tracker) ticket(sec Section) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued[sec]++
	return t.issued[sec]
}

func (t *Tracker) commit(ctx context.Context, sec Section, ticket uint64, fn func(*State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket <= t.applied[sec] {
		t.logger.WithComponent(log.ComponentLoader).DebugContext(ctx, "Dropping stale load result",
			log.FieldSection, string(sec), "ticket", ticket, "applied", t.applied[sec])
		return
	}
	t.applied[sec] = ticket
	fn(&t.state)
	t.logger.WithComponent(log.ComponentLoader).DebugContext(ctx, "Section loaded",
		log.FieldSection, string(sec), log.FieldCount, t.itemCount(sec))
}

// itemCount is called with t.mu held.
func (t *Tracker) itemCount(sec Section) int {
	switch sec {
	case SectionExpenses:
		return len(t.state.Expenses)
	case SectionIncome:
		return len(t.state.Income)
	default:
		return 3
	}
}

func (t *Tracker) loadFailed(ctx context.Context, sec Section, err error) {
	fields := log.NewFields().WithSection(string(sec)).WithOperation(log.OpRead).WithError(err)
	t.logger.WithComponent(log.ComponentLoader).ErrorContext(ctx, "Error loading "+string(sec), fields.ToSlice()...)
}

// DismissAlert clears the validation message.
func (t *Tracker) DismissAlert() {
	t.update(func(s *State) { s.Alert = "" })
}

// AddExpense submits form as a new expense and reports whether the API
// accepted it.
//
// The submitted values are stored as the expense inputs and validated in
// the same update, then posted as given, so overlapping submissions never
// post each other's values. Validation problems set the alert and are
// returned; no request is made. API failures are only logged and leave the
// inputs populated. On success the inputs are cleared, unless a newer
// submission replaced them, and the expense list and dashboard reloaded.
func (t *Tracker) AddExpense(ctx context.Context, form ExpenseForm) (bool, error) {
	var (
		exp core.Expense
		err error
	)
	t.update(func(s *State) {
		s.ExpenseForm = form
		exp, err = t.checkExpense(form)
		if err != nil {
			s.Alert = err.Error()
		}
	})
	if err != nil {
		return false, err
	}

	lg := t.logger.WithComponent(log.ComponentExpense)
	if err := t.api.CreateExpense(ctx, exp); err != nil {
		lg.ErrorContext(ctx, "Error adding expense", log.FieldOperation, log.OpCreate, log.FieldError, err,
			log.FieldTitle, exp.Title, log.FieldAmount, exp.Amount.String())
		return false, nil
	}
	lg.InfoContext(ctx, "Expense added", log.FieldTitle, exp.Title, log.FieldAmount, exp.Amount.String())

	t.update(func(s *State) {
		if s.ExpenseForm == form {
			s.ExpenseForm = ExpenseForm{}
		}
		s.Alert = ""
	})
	t.refresh(ctx, t.LoadExpenses)
	t.publish(ctx, core.KindExpense, exp.Title, exp.Amount)
	return true, nil
}

// AddIncome submits form as a new income. See AddExpense.
func (t *Tracker) AddIncome(ctx context.Context, form IncomeForm) (bool, error) {
	var (
		inc core.Income
		err error
	)
	t.update(func(s *State) {
		s.IncomeForm = form
		inc, err = t.checkIncome(form)
		if err != nil {
			s.Alert = err.Error()
		}
	})
	if err != nil {
		return false, err
	}

	lg := t.logger.WithComponent(log.ComponentIncome)
	if err := t.api.CreateIncome(ctx, inc); err != nil {
		lg.ErrorContext(ctx, "Error adding income", log.FieldOperation, log.OpCreate, log.FieldError, err,
			log.FieldSource, inc.Source, log.FieldAmount, inc.Amount.String())
		return false, nil
	}
	lg.InfoContext(ctx, "Income added", log.FieldSource, inc.Source, log.FieldAmount, inc.Amount.String())

	t.update(func(s *State) {
		if s.IncomeForm == form {
			s.IncomeForm = IncomeForm{}
		}
		s.Alert = ""
	})
	t.refresh(ctx, t.LoadIncome)
	t.publish(ctx, core.KindIncome, inc.Source, inc.Amount)
	return true, nil
}

func (t *Tracker) checkExpense(form ExpenseForm) (core.Expense, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Amount = strings.TrimSpace(form.Amount)
	amount, err := t.checkForm(form, form.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	exp := core.Expense{Title: form.Title, Amount: amount}
	return exp, exp.Validate()
}

func (t *Tracker) checkIncome(form IncomeForm) (core.Income, error) {
	form.Source = strings.TrimSpace(form.Source)
	form.Amount = strings.TrimSpace(form.Amount)
	amount, err := t.checkForm(form, form.Amount)
	if err != nil {
		return core.Income{}, err
	}
	inc := core.Income{Source: form.Source, Amount: amount}
	return inc, inc.Validate()
}

// checkForm runs the required-field rules and parses the amount. The
// record's own Validate checks the parsed value.
func (t *Tracker) checkForm(form any, rawAmount string) (core.Money, error) {
	if err := t.validate.Struct(form); err != nil {
		return core.Money{}, core.ErrMissingFields
	}
	return core.ParseAmount(rawAmount)
}

// refresh reloads the owning list together with the dashboard.
func (t *Tracker) refresh(ctx context.Context, list func(context.Context)) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { list(gctx); return nil })
	g.Go(func() error { t.LoadDashboard(gctx); return nil })
	_ = g.Wait()
}

func (t *Tracker) publish(ctx context.Context, kind core.RecordKind, label string, amount core.Money) {
	if t.publisher == nil {
		return
	}
	ev := core.RecordCreated{Kind: kind, Label: label, Amount: amount.String(), CreatedAt: time.Now().UTC()}
	if err := t.publisher.PublishRecordCreated(ctx, ev); err != nil {
		t.logger.WithComponent(log.ComponentAMQP).WarnContext(ctx, "Failed to publish record event",
			log.FieldError, err, "kind", string(kind))
	}
}
