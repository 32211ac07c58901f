// Package financetest provides an in-memory finance API for tests.
package financetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

type Expense struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

type Income struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
}

// API mimics the external finance service: it stores records and computes
// the dashboard totals itself.
type API struct {
	*httptest.Server

	mu       sync.Mutex
	expenses []Expense
	income   []Income
	failing  atomic.Bool
	posts    atomic.Int64
	gets     atomic.Int64
}

// NewAPI starts a server mounted under /api. Callers must Close it.
func NewAPI() *API {
	a := &API{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard", a.handleDashboard)
	mux.HandleFunc("GET /api/expenses", a.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", a.handleCreateExpense)
	mux.HandleFunc("GET /api/income", a.handleListIncome)
	mux.HandleFunc("POST /api/income", a.handleCreateIncome)
	a.Server = httptest.NewServer(a.guard(mux))
	return a
}

// BaseURL is the value to hand to finance.NewClient.
func (a *API) BaseURL() string { return a.URL + "/api" }

// SetFailing makes every request answer 500 until reset.
func (a *API) SetFailing(v bool) { a.failing.Store(v) }

func (a *API) Posts() int64 { return a.posts.Load() }
func (a *API) Gets() int64  { return a.gets.Load() }

func (a *API) SeedExpense(title string, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expenses = append(a.expenses, Expense{Title: title, Amount: decimal.NewFromFloat(amount)})
}

func (a *API) SeedIncome(source string, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.income = append(a.income, Income{Source: source, Amount: decimal.NewFromFloat(amount)})
}

func (a *API) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			a.posts.Add(1)
		} else {
			a.gets.Add(1)
		}
		if a.failing.Load() {
			http.Error(w, "backend down", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	var in, out decimal.Decimal
	for _, i := range a.income {
		in = in.Add(i.Amount)
	}
	for _, e := range a.expenses {
		out = out.Add(e.Amount)
	}
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]json.Number{
		"totalIncome":   json.Number(in.String()),
		"totalExpenses": json.Number(out.String()),
		"balance":       json.Number(in.Sub(out).String()),
	})
}

func (a *API) handleListExpenses(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	items := append([]Expense{}, a.expenses...)
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleListIncome(w http.ResponseWriter, _ *http.Request) {
	a.mu.Lock()
	items := append([]Income{}, a.income...)
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e Expense
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil || e.Title == "" {
		http.Error(w, "bad expense", http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.expenses = append(a.expenses, e)
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, e)
}

func (a *API) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var i Income
	if err := json.NewDecoder(r.Body).Decode(&i); err != nil || i.Source == "" {
		http.Error(w, "bad income", http.StatusBadRequest)
		return
	}
	a.mu.Lock()
	a.income = append(a.income, i)
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, i)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
