// Package students scores the fixed class roster for the marks dashboard.
package students

// MaxPerSubject is the best possible score in a single subject.
const MaxPerSubject = 100

// Subjects is the display order of the marks on every card.
var Subjects = []string{"DevOps", "AiAssistedcoding", "DisasterMangament"}

// Student is one roster entry. RollNo is unique within the roster.
type Student struct {
	Name   string
	RollNo string
	Marks  map[string]int
}

// Grade is a letter grade with the badge color it is shown with.
type Grade struct {
	Letter string
	Color  string
}

var (
	GradeAPlus = Grade{Letter: "A+", Color: "green"}
	GradeA     = Grade{Letter: "A", Color: "blue"}
	GradeB     = Grade{Letter: "B", Color: "orange"}
	GradeC     = Grade{Letter: "C", Color: "red"}
)

// Mark is a single subject score in roster order.
type Mark struct {
	Subject string
	Score   int
}

// Card is everything a student card displays.
type Card struct {
	Name   string
	RollNo string
	Marks  []Mark
	Total  int
	Max    int
	Grade  Grade
}

// Roster returns the class. A fresh copy is built on every call.
func Roster() []Student {
	return []Student{
		{
			Name:   "Radha Krishna",
			RollNo: "2303A52055",
			Marks:  map[string]int{"DevOps": 95, "AiAssistedcoding": 88, "DisasterMangament": 92},
		},
		{
			Name:   "Mukesh Babu",
			RollNo: "2303A52061",
			Marks:  map[string]int{"DevOps": 90, "AiAssistedcoding": 85, "DisasterMangament": 80},
		},
		{
			Name:   "Siddharth",
			RollNo: "2303A52463",
			Marks:  map[string]int{"DevOps": 34, "AiAssistedcoding": 65, "DisasterMangament": 50},
		},
		{
			Name:   "OM Prakesh",
			RollNo: "2303A52057",
			Marks:  map[string]int{"DevOps": 70, "AiAssistedcoding": 70, "DisasterMangament": 90},
		},
	}
}

// GradeFor maps a total to its grade. Thresholds are inclusive.
func GradeFor(total int) Grade {
	switch {
	case total >= 270:
		return GradeAPlus
	case total >= 240:
		return GradeA
	case total >= 200:
		return GradeB
	default:
		return GradeC
	}
}

// Score builds the card for s. Subjects missing from s.Marks count as 0.
func Score(s Student) Card {
	c := Card{
		Name:   s.Name,
		RollNo: s.RollNo,
		Marks:  make([]Mark, 0, len(Subjects)),
		Max:    MaxPerSubject * len(Subjects),
	}
	for _, subject := range Subjects {
		score := s.Marks[subject]
		c.Marks = append(c.Marks, Mark{Subject: subject, Score: score})
		c.Total += score
	}
	c.Grade = GradeFor(c.Total)
	return c
}

// Cards scores every student in order.
func Cards(roster []Student) []Card {
	cards := make([]Card, 0, len(roster))
	for _, s := range roster {
		cards = append(cards, Score(s))
	}
	return cards
}
