package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"trivia-visualizer/internal/domain"
	"trivia-visualizer/internal/processor"
)

const maxBarWidth = 40

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleSubtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleCategory = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F46E5"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// TerminalSummary renders a snapshot as text bars. With byCount the categories
// are listed largest first, otherwise in first-seen order.
func TerminalSummary(selected string, snapshot domain.ProcessedSnapshot, byCount bool) string {
	if selected == "" {
		selected = domain.AllCategories
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render("Data Summary for "+selected) + "\n")
	fmt.Fprintf(&b, "Total Questions: %d\n", snapshot.TotalQuestions)
	if selected == domain.AllCategories {
		fmt.Fprintf(&b, "Categories: %d\n", len(snapshot.Categories))
	}

	categories := snapshot.Categories
	if byCount {
		categories = processor.SortCategoriesByCount(categories)
	}

	labelWidth, maxCount := 0, 0
	for _, c := range categories {
		labelWidth = max(labelWidth, lipgloss.Width(c.Name))
		maxCount = max(maxCount, c.Count)
	}
	for _, d := range snapshot.Difficulties {
		labelWidth = max(labelWidth, lipgloss.Width(d.Name))
		maxCount = max(maxCount, d.Count)
	}

	b.WriteString("\n" + styleHeader.Render("Questions by Category") + "\n")
	for _, c := range categories {
		b.WriteString(barLine(c.Name, c.Count, labelWidth, maxCount, styleCategory))
	}

	b.WriteString("\n" + styleHeader.Render("Questions by Difficulty") + "\n")
	for _, d := range snapshot.Difficulties {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(difficultyColor(d.Name)))
		b.WriteString(barLine(d.Name, d.Count, labelWidth, maxCount, style))
	}
	return b.String()
}

// TerminalError renders a load failure message.
func TerminalError(message string) string {
	return styleError.Render("Error: "+message) + "\n"
}

func barLine(label string, count, labelWidth, maxCount int, style lipgloss.Style) string {
	width := 0
	if maxCount > 0 {
		width = count * maxBarWidth / maxCount
	}
	if count > 0 && width == 0 {
		width = 1
	}
	pad := strings.Repeat(" ", labelWidth-lipgloss.Width(label))
	return fmt.Sprintf("  %s%s %s %s\n", label, pad, style.Render(strings.Repeat("█", width)), styleSubtle.Render(fmt.Sprint(count)))
}
