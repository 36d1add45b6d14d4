package opentdb

import (
	"html"

	"trivia-visualizer/internal/domain"
)

// DecodeHTML converts HTML entities (named and numeric) to literal characters.
func DecodeHTML(text string) string {
	return html.UnescapeString(text)
}

// ProcessQuestions decodes the text fields of every question into a new slice.
// Type and Difficulty are left untouched.
func ProcessQuestions(raw []domain.Question) []domain.Question {
	out := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		incorrect := make([]string, len(q.IncorrectAnswers))
		for i, answer := range q.IncorrectAnswers {
			incorrect[i] = DecodeHTML(answer)
		}
		out = append(out, domain.Question{
			Category:         DecodeHTML(q.Category),
			Type:             q.Type,
			Difficulty:       q.Difficulty,
			Question:         DecodeHTML(q.Question),
			CorrectAnswer:    DecodeHTML(q.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}
	return out
}
