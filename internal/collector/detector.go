package collector

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/adfit/internal/models"
)

// formatKeyword maps a naming convention to a format tag
type formatKeyword struct {
	keyword string
	tag     models.FormatTag
	// word keywords only match when not surrounded by other letters
	word bool
}

// formatKeywords is checked in order; the first hit wins
var formatKeywords = []formatKeyword{
	{"spincube", models.FormatSpincube, false},
	{"kombi", models.FormatKombi, false},
	{"scratch", models.FormatScratch, false},
	{"spinner", models.FormatSpinner, false},
	{"uac", models.FormatUAC, true},
	{"exclusive", models.FormatExclusive, false},
	{"branding", models.FormatBranding, false},
	{"screening", models.FormatBranding, false},
}

// DetectFormat derives a format tag from where a file lives and what it
// is called. Archives without a naming hint are html5; other files get no
// tag.
func DetectFormat(folderPath, fileName string) models.FormatTag {
	haystack := strings.ToLower(filepath.ToSlash(folderPath) + "/" + fileName)

	for _, fk := range formatKeywords {
		if fk.matches(haystack) {
			return fk.tag
		}
	}

	if strings.EqualFold(filepath.Ext(fileName), ".zip") {
		return models.FormatHTML5
	}
	return models.FormatNone
}

func (fk formatKeyword) matches(haystack string) bool {
	if fk.word {
		return containsWord(haystack, fk.keyword)
	}
	return strings.Contains(haystack, fk.keyword)
}

// containsWord reports whether word occurs in s with no letter directly
// before or after it.
func containsWord(s, word string) bool {
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !unicode.IsLetter(before)) && (end == len(s) || !unicode.IsLetter(after)) {
			return true
		}
		offset = start + 1
	}
	return false
}
