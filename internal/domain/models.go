package domain

import "time"

// AllCategories is the filter value that selects every question.
const AllCategories = "All"

// QuestionType is the answer format of a question.
type QuestionType string

const (
	TypeMultiple QuestionType = "multiple"
	TypeBoolean  QuestionType = "boolean"
)

// Difficulty ranks how hard a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a trivia question as served by Open Trivia DB.
// Text fields arrive HTML-encoded and are decoded before display.
type Question struct {
	Category         string       `json:"category"`
	Type             QuestionType `json:"type"`
	Difficulty       Difficulty   `json:"difficulty"`
	Question         string       `json:"question"`
	CorrectAnswer    string       `json:"correct_answer"`
	IncorrectAnswers []string     `json:"incorrect_answers"`
}

// Category is an entry of the category catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoryAggregate counts questions sharing a category name.
// ID is not resolved against the catalog and stays 0.
type CategoryAggregate struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DifficultyAggregate counts questions sharing a difficulty; Name is capitalized.
type DifficultyAggregate struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProcessedSnapshot is the chart-ready view of a question set.
type ProcessedSnapshot struct {
	Categories     []CategoryAggregate   `json:"categories"`
	Difficulties   []DifficultyAggregate `json:"difficulties"`
	TotalQuestions int                   `json:"totalQuestions"`
}

// State is what the presentation layer renders for one dashboard.
type State struct {
	Categories          []Category         `json:"categories"`
	Questions           []Question         `json:"questions"`
	ProcessedData       *ProcessedSnapshot `json:"processedData"`
	AvailableCategories []string           `json:"availableCategories"`
	SelectedCategory    string             `json:"selectedCategory"`
	Loading             bool               `json:"loading"`
	Error               string             `json:"error,omitempty"`
	Generation          uint64             `json:"generation"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// LoadRecord is an archived summary of one committed load.
type LoadRecord struct {
	ID             int64             `json:"id"`
	DashboardID    string            `json:"dashboardId"`
	LoadedAt       time.Time         `json:"loadedAt"`
	TotalQuestions int               `json:"totalQuestions"`
	CategoryCount  int               `json:"categoryCount"`
	Snapshot       ProcessedSnapshot `json:"snapshot"`
}
