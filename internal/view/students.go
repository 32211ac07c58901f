package view

import (
	"fmt"
	"io"
	"strconv"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"

	"pft/internal/students"
)

// StudentsPage renders the marks dashboard.
func StudentsPage(cards []students.Card) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    "Smart Student Marks Dashboard",
		Language: "en",
		Head: []g.Node{
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			Link(Rel("stylesheet"), Href("/static/style.css")),
		},
		Body: []g.Node{
			Div(Class("app-container"),
				H1(Class("title"), g.Text("📘 Smart Student Marks Dashboard")),
				Div(Class("card-container"), g.Map(cards, StudentCard)),
			),
		},
	})
}

// StudentCard renders one scored student.
func StudentCard(card students.Card) g.Node {
	return Div(Class("student-card"),
		H2(g.Text(card.Name)),
		P(Strong(g.Text("Roll No:")), g.Text(" "+card.RollNo)),
		Div(Class("marks"),
			g.Map(card.Marks, func(m students.Mark) g.Node {
				return P(g.Textf("%s: %d", m.Subject, m.Score))
			}),
		),
		Div(Class("total"), g.Textf("Total: %d / %d", card.Total, card.Max)),
		Div(Class("grade"), Style("background-color: "+card.Grade.Color),
			g.Text("Grade: "+card.Grade.Letter)),
	)
}

// WriteStudentCards prints the cards as plain text, one block per student.
func WriteStudentCards(w io.Writer, cards []students.Card) error {
	for i, card := range cards {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%s)\n", card.Name, card.RollNo); err != nil {
			return err
		}
		for _, m := range card.Marks {
			if _, err := fmt.Fprintf(w, "  %-18s %3d\n", m.Subject+":", m.Score); err != nil {
				return err
			}
		}
		line := "  Total: " + strconv.Itoa(card.Total) + " / " + strconv.Itoa(card.Max) +
			"  Grade: " + card.Grade.Letter + " (" + card.Grade.Color + ")\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
