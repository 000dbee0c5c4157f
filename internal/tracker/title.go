package tracker

import "strings"

// TitleForWord builds the issue title that encodes a dictionary word. The
// prefix is fixed so the word can be recovered losslessly by stripping it.
func TitleForWord(prefix, word string) string {
	return prefix + word
}

// WordFromTitle recovers the word from an issue title, or "" when the title
// does not carry the prefix.
func WordFromTitle(prefix, title string) string {
	idx := strings.Index(title, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(title[idx+len(prefix):])
}
