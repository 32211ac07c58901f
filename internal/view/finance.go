// Package view renders the tracker and the marks dashboard as HTML.
package view

import (
	"io"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"pft/internal/app"
)

// AppID is the element every HTMX action swaps.
const AppID = "app"

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Render writes n to w.
func Render(w io.Writer, n g.Node) error {
	return n.Render(w)
}

// TrackerPage is the full finance tracker document.
func TrackerPage(s app.State) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    "Personal Finance Tracker",
		Language: "en",
		Head: []g.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Link(Rel("stylesheet"), Href("/static/style.css")),
			Script(Src(htmxSrc), Defer()),
			Script(Src("/static/app.js"), Defer()),
		},
		Body: []g.Node{App(s)},
	})
}

// App is the swappable body of the tracker: navigation, alert and the
// three sections.
func App(s app.State) g.Node {
	return Div(ID(AppID),
		Navbar(s),
		Alert(s.Alert),
		Main(Class("container"),
			DashboardSection(s),
			ExpensesSection(s),
			IncomeSection(s),
		),
	)
}

// Navbar renders the title and one button per section. The clicked button
// is sent as the trigger so the router can highlight it.
func Navbar(s app.State) g.Node {
	return Nav(Class("navbar"),
		H1(g.Text("Personal Finance Tracker")),
		Div(Class("nav-links"),
			g.Map(app.NavControls, func(ctrl app.Control) g.Node {
				return Button(
					ID(ctrl.ID),
					Type("button"),
					c.Classes{"active": s.ControlActive(ctrl)},
					hx.Post("/ui/sections/"+string(ctrl.Section)),
					hx.Vals(`{"trigger":"`+ctrl.ID+`"}`),
					hx.Target("#"+AppID),
					hx.Swap("outerHTML"),
					g.Text(ctrl.Label),
				)
			}),
		),
	)
}

// Alert shows the last validation message, or an empty placeholder.
func Alert(msg string) g.Node {
	return Div(ID("alert"), Role("alert"),
		c.Classes{"alert": true, "visible": msg != ""},
		g.If(msg != "", g.Group{
			Span(g.Text(msg)),
			Button(Type("button"), Class("alert-close"),
				hx.Delete("/ui/alert"), hx.Target("#alert"), hx.Swap("outerHTML"),
				g.Text("×"),
			),
		}),
	)
}

func section(sec app.Section, s app.State, children ...g.Node) g.Node {
	return Section(ID(string(sec)),
		c.Classes{"section": true, "active": s.Visible(sec)},
		g.Group(children),
	)
}

// DashboardSection renders the three summary cards.
func DashboardSection(s app.State) g.Node {
	return section(app.SectionDashboard, s,
		H2(g.Text("Dashboard")),
		Div(Class("summary-cards"),
			summaryCard("income-card", "Total Income", "totalIncome", s.Dashboard.TotalIncome),
			summaryCard("expense-card", "Total Expenses", "totalExpenses", s.Dashboard.TotalExpenses),
			summaryCard("balance-card", "Balance", "balance", s.Dashboard.Balance),
		),
	)
}

func summaryCard(class, title, id, value string) g.Node {
	return Div(Class("card "+class),
		H3(g.Text(title)),
		P(ID(id), Class("amount"), g.Text(value)),
	)
}

// ExpensesSection renders the add form and the expense list.
func ExpensesSection(s app.State) g.Node {
	return section(app.SectionExpenses, s,
		H2(g.Text("Expenses")),
		Form(Class("record-form"),
			hx.Post("/ui/expenses"), hx.Target("#"+AppID), hx.Swap("outerHTML"),
			Input(ID("expenseTitle"), Name("title"), Type("text"), Placeholder("Expense title"),
				Value(s.ExpenseForm.Title)),
			Input(ID("expenseAmount"), Name("amount"), Type("number"), Step("0.01"), Placeholder("Amount"),
				Value(s.ExpenseForm.Amount)),
			Button(ID("addExpenseBtn"), Type("submit"), g.Text("Add Expense")),
		),
		recordList("expensesList", s.Expenses),
	)
}

// IncomeSection renders the add form and the income list.
func IncomeSection(s app.State) g.Node {
	return section(app.SectionIncome, s,
		H2(g.Text("Income")),
		Form(Class("record-form"),
			hx.Post("/ui/income"), hx.Target("#"+AppID), hx.Swap("outerHTML"),
			Input(ID("incomeSource"), Name("source"), Type("text"), Placeholder("Income source"),
				Value(s.IncomeForm.Source)),
			Input(ID("incomeAmount"), Name("amount"), Type("number"), Step("0.01"), Placeholder("Amount"),
				Value(s.IncomeForm.Amount)),
			Button(ID("addIncomeBtn"), Type("submit"), g.Text("Add Income")),
		),
		recordList("incomeList", s.Income),
	)
}

func recordList(id string, items []app.ListItem) g.Node {
	return Ul(ID(id), Class("record-list"),
		g.Map(items, func(it app.ListItem) g.Node {
			return Li(Span(
				Div(Strong(g.Text(it.Label))),
				Div(g.Text(it.Amount)),
			))
		}),
	)
}

// SectionFragment renders a single section by name.
func SectionFragment(sec app.Section, s app.State) g.Node {
	switch sec {
	case app.SectionExpenses:
		return ExpensesSection(s)
	case app.SectionIncome:
		return IncomeSection(s)
	default:
		return DashboardSection(s)
	}
}
