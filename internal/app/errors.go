package app

import "trivia-visualizer/internal/domain"

// UserMessage maps a load failure to the text shown to the user. Codes that
// have a known remedy get guidance; everything else echoes the error.
func UserMessage(err error) string {
	if err == nil {
		return "Failed to load trivia data"
	}
	if code, ok := domain.APICode(err); ok {
		switch code {
		case domain.CodeNoResults:
			return "No questions available. Please try again later."
		case domain.CodeTokenEmpty:
			return "All questions have been used. Please refresh to get new questions."
		case domain.CodeRateLimit:
			return "Too many requests. Please wait a moment before trying again."
		}
	}
	return err.Error()
}
