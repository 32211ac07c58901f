package students

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeFor_Boundaries(t *testing.T) {
	tests := []struct {
		total int
		want  Grade
	}{
		{300, GradeAPlus},
		{270, GradeAPlus},
		{269, GradeA},
		{240, GradeA},
		{239, GradeB},
		{200, GradeB},
		{199, GradeC},
		{0, GradeC},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total), "total %d", tt.total)
	}
}

func TestScore(t *testing.T) {
	card := Score(Student{
		Name:   "Test",
		RollNo: "X1",
		Marks:  map[string]int{"DevOps": 90, "AiAssistedcoding": 90, "DisasterMangament": 90},
	})

	assert.Equal(t, 270, card.Total)
	assert.Equal(t, 300, card.Max)
	assert.Equal(t, GradeAPlus, card.Grade)
	require.Len(t, card.Marks, 3)
	assert.Equal(t, Mark{Subject: "DevOps", Score: 90}, card.Marks[0])
	assert.Equal(t, "DisasterMangament", card.Marks[2].Subject)
}

func TestScore_MissingSubjectCountsZero(t *testing.T) {
	card := Score(Student{Name: "Partial", Marks: map[string]int{"DevOps": 100}})
	assert.Equal(t, 100, card.Total)
	assert.Equal(t, GradeC, card.Grade)
}

func TestScore_Deterministic(t *testing.T) {
	s := Roster()[0]
	assert.Equal(t, Score(s), Score(s))
}

func TestRoster(t *testing.T) {
	cards := Cards(Roster())
	require.Len(t, cards, 4)

	want := map[string]struct {
		total int
		grade string
	}{
		"Radha Krishna": {275, "A+"},
		"Mukesh Babu":   {255, "A"},
		"Siddharth":     {149, "C"},
		"OM Prakesh":    {230, "B"},
	}
	seen := map[string]bool{}
	for _, c := range cards {
		w, ok := want[c.Name]
		require.True(t, ok, c.Name)
		assert.Equal(t, w.total, c.Total, c.Name)
		assert.Equal(t, w.grade, c.Grade.Letter, c.Name)
		assert.False(t, seen[c.RollNo], "duplicate roll number %s", c.RollNo)
		seen[c.RollNo] = true
	}
}
