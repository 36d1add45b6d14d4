package opentdb

import (
	"strings"
	"testing"

	"trivia-visualizer/internal/domain"
)

func TestDecodeHTMLNamedEntities(t *testing.T) {
	cases := map[string]string{
		"&amp;":             "&",
		"&lt;":              "<",
		"&gt;":              ">",
		"&quot;":            `"`,
		"&#039;":            "'",
		"Tom &amp; Jerry":   "Tom & Jerry",
		"&eacute;t&eacute;": "été",
	}
	for in, want := range cases {
		if got := DecodeHTML(in); got != want {
			t.Fatalf("DecodeHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeHTMLIdempotentOnPlainText(t *testing.T) {
	for _, plain := range []string{"Tom & Jerry", "2 < 3 > 1", `He said "hi"`, "it's", ""} {
		once := DecodeHTML(plain)
		if DecodeHTML(once) != once {
			t.Fatalf("decode not idempotent for %q", plain)
		}
	}
}

func TestDecodeHTMLRoundTrip(t *testing.T) {
	encoder := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#039;")
	original := `Which "O'Brien" scored <5 & >3?`
	if got := DecodeHTML(encoder.Replace(original)); got != original {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestProcessQuestionsDecodesTextFields(t *testing.T) {
	raw := []domain.Question{{
		Category:         "Entertainment: Books &amp; Comics",
		Type:             domain.TypeMultiple,
		Difficulty:       domain.DifficultyEasy,
		Question:         "What is 2 &amp; 2?",
		CorrectAnswer:    "&quot;4&quot;",
		IncorrectAnswers: []string{"3", "&lt;5"},
	}}

	processed := ProcessQuestions(raw)
	q := processed[0]
	if q.Category != "Entertainment: Books & Comics" || q.Question != "What is 2 & 2?" || q.CorrectAnswer != `"4"` {
		t.Fatalf("unexpected decoded question %+v", q)
	}
	if q.IncorrectAnswers[0] != "3" || q.IncorrectAnswers[1] != "<5" {
		t.Fatalf("unexpected incorrect answers %v", q.IncorrectAnswers)
	}
	if q.Type != domain.TypeMultiple || q.Difficulty != domain.DifficultyEasy {
		t.Fatalf("type and difficulty must be untouched")
	}
	if raw[0].IncorrectAnswers[1] != "&lt;5" {
		t.Fatalf("input mutated")
	}
}
