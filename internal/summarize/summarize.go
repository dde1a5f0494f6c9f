// Package summarize condenses extracted document text into the short
// summaries that feed slide rendering. Two providers exist: an extractive
// summarizer with no external dependencies, and a Gemini-backed one.
package summarize

// Truncate caps text at max characters, cutting on a whitespace boundary
// where one exists near the limit. A max of zero or less disables capping.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	cut := text[:max]
	// Back up to the last space so we never split a word, unless the
	// text has no spaces at all in the window.
	for i := len(cut) - 1; i > max/2; i-- {
		if cut[i] == ' ' || cut[i] == '\n' || cut[i] == '\t' {
			return cut[:i]
		}
	}
	return cut
}
