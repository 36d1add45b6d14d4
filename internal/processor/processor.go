// Package processor turns question lists into chart-ready aggregates.
// Every function is pure: inputs are never mutated.
package processor

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"trivia-visualizer/internal/domain"
)

var difficultyOrder = map[string]int{"Easy": 0, "Medium": 1, "Hard": 2}

// GroupByCategory counts questions per category name in first-seen order.
func GroupByCategory(questions []domain.Question) []domain.CategoryAggregate {
	index := make(map[string]int)
	groups := make([]domain.CategoryAggregate, 0)

	for _, q := range questions {
		if i, ok := index[q.Category]; ok {
			groups[i].Count++
			continue
		}
		index[q.Category] = len(groups)
		groups = append(groups, domain.CategoryAggregate{Name: q.Category, Count: 1})
	}
	return groups
}

// GroupByDifficulty counts questions per difficulty in first-seen order,
// with capitalized names.
func GroupByDifficulty(questions []domain.Question) []domain.DifficultyAggregate {
	index := make(map[domain.Difficulty]int)
	groups := make([]domain.DifficultyAggregate, 0)

	for _, q := range questions {
		if i, ok := index[q.Difficulty]; ok {
			groups[i].Count++
			continue
		}
		index[q.Difficulty] = len(groups)
		groups = append(groups, domain.DifficultyAggregate{Name: capitalize(string(q.Difficulty)), Count: 1})
	}
	return groups
}

// SortDifficulties orders aggregates Easy, Medium, Hard. Unrecognized names
// go after the known ones and keep their relative order.
func SortDifficulties(difficulties []domain.DifficultyAggregate) []domain.DifficultyAggregate {
	sorted := append([]domain.DifficultyAggregate(nil), difficulties...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return difficultyRank(sorted[i].Name) < difficultyRank(sorted[j].Name)
	})
	return sorted
}

// SortCategoriesByCount orders aggregates by descending count; ties keep input order.
func SortCategoriesByCount(categories []domain.CategoryAggregate) []domain.CategoryAggregate {
	sorted := append([]domain.CategoryAggregate(nil), categories...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	return sorted
}

// FilterQuestionsByCategory keeps questions whose category equals name exactly.
// An empty name or AllCategories returns questions as is.
func FilterQuestionsByCategory(questions []domain.Question, name string) []domain.Question {
	if name == "" || name == domain.AllCategories {
		return questions
	}
	filtered := make([]domain.Question, 0)
	for _, q := range questions {
		if q.Category == name {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// UniqueCategories lists distinct category names sorted ascending, after AllCategories.
func UniqueCategories(questions []domain.Question) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, q := range questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		names = append(names, q.Category)
	}
	sort.Strings(names)
	return append([]string{domain.AllCategories}, names...)
}

// ProcessTriviaData derives the full snapshot for a question set.
func ProcessTriviaData(questions []domain.Question) domain.ProcessedSnapshot {
	return domain.ProcessedSnapshot{
		Categories:     GroupByCategory(questions),
		Difficulties:   SortDifficulties(GroupByDifficulty(questions)),
		TotalQuestions: len(questions),
	}
}

func difficultyRank(name string) int {
	if rank, ok := difficultyOrder[name]; ok {
		return rank
	}
	return len(difficultyOrder)
}

// capitalize upper-cases the first letter and leaves the rest unchanged.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteRune(unicode.ToUpper(r))
	b.WriteString(s[size:])
	return b.String()
}
