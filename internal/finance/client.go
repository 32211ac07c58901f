// Package finance talks to the external finance REST API that owns expense
// and income records and computes dashboard totals.
package finance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pft/internal/core"
)

const (
	pathDashboard = "/dashboard"
	pathExpenses  = "/expenses"
	pathIncome    = "/income"

	maxBodyBytes = 1 << 20
)

// APIError is returned when the finance API answers with a non-2xx status.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Wire formats. Amounts travel as JSON numbers.
type (
	dashboardDTO struct {
		TotalIncome   json.Number `json:"totalIncome"`
		TotalExpenses json.Number `json:"totalExpenses"`
		Balance       json.Number `json:"balance"`
	}

	expenseDTO struct {
		Title  string      `json:"title"`
		Amount json.Number `json:"amount"`
	}

	incomeDTO struct {
		Source string      `json:"source"`
		Amount json.Number `json:"amount"`
	}
)

// Client is an HTTP client for the finance API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ API = (*Client)(nil)

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:5000/api").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP is like NewClient but uses the given http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// BaseURL returns the API root used by the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ReadDashboard(ctx context.Context) (core.DashboardSummary, error) {
	var dto dashboardDTO
	if err := c.getJSON(ctx, "read dashboard", pathDashboard, &dto); err != nil {
		return core.DashboardSummary{}, err
	}
	income, err := toMoney(dto.TotalIncome)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("read dashboard: totalIncome: %w", err)
	}
	expenses, err := toMoney(dto.TotalExpenses)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("read dashboard: totalExpenses: %w", err)
	}
	balance, err := toMoney(dto.Balance)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("read dashboard: balance: %w", err)
	}
	return core.DashboardSummary{TotalIncome: income, TotalExpenses: expenses, Balance: balance}, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var dtos []expenseDTO
	if err := c.getJSON(ctx, "list expenses", pathExpenses, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(dtos))
	for i, d := range dtos {
		amt, err := toMoney(d.Amount)
		if err != nil {
			return nil, fmt.Errorf("list expenses: item %d: %w", i, err)
		}
		out = append(out, core.Expense{Title: d.Title, Amount: amt})
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, e core.Expense) error {
	dto := expenseDTO{Title: e.Title, Amount: json.Number(e.Amount.String())}
	return c.postJSON(ctx, "create expense", pathExpenses, dto)
}

func (c *Client) ListIncome(ctx context.Context) ([]core.Income, error) {
	var dtos []incomeDTO
	if err := c.getJSON(ctx, "list income", pathIncome, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(dtos))
	for i, d := range dtos {
		amt, err := toMoney(d.Amount)
		if err != nil {
			return nil, fmt.Errorf("list income: item %d: %w", i, err)
		}
		out = append(out, core.Income{Source: d.Source, Amount: amt})
	}
	return out, nil
}

func (c *Client) CreateIncome(ctx context.Context, i core.Income) error {
	dto := incomeDTO{Source: i.Source, Amount: json.Number(i.Amount.String())}
	return c.postJSON(ctx, "create income", pathIncome, dto)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	defer func() { _, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) }()

	return checkStatus(op, resp)
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}

// toMoney accepts JSON numbers and also numeric strings, which some
// backends emit for decimal columns.
func toMoney(n json.Number) (core.Money, error) {
	s := strings.Trim(strings.TrimSpace(n.String()), `"`)
	if s == "" {
		return core.Money{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return core.Money{Decimal: d}, nil
}
