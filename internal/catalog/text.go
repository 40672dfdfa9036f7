package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxTitleRunes bounds the cleaned title length.
	MaxTitleRunes = 60
	// minLeadRunes is the shortest lead paragraph used as-is for descriptions.
	minLeadRunes = 50
	// maxCaptionRunes caps the caption prefix used when the lead is too short.
	maxCaptionRunes = 500
	// MinDescriptionRunes is the shortest derived description kept before
	// falling back to the templated sentence.
	MinDescriptionRunes = 100
	// TitlePlaceholder is replaced with the track title in fallback templates.
	TitlePlaceholder = "{title}"
)

// isWord mirrors a Unicode-aware \w: letters, numbers, underscore.
func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NormalizeCaption applies NFC and converts CRLF line endings to LF.
func NormalizeCaption(caption string) string {
	caption = norm.NFC.String(caption)
	return strings.ReplaceAll(caption, "\r\n", "\n")
}

// FirstLine returns caption up to the first newline.
func FirstLine(caption string) string {
	if i := strings.IndexByte(caption, '\n'); i >= 0 {
		return caption[:i]
	}
	return caption
}

// CleanTitle derives a display title from the first caption line: characters
// other than word characters, whitespace, hyphen, apostrophe, double quote and
// dollar sign are removed, the result is trimmed, and titles longer than
// MaxTitleRunes are cut back to the last whitespace so no word is split. An
// empty result falls back to "Freestyle <mediaID>".
func CleanTitle(caption, mediaID string) string {
	line := FirstLine(NormalizeCaption(caption))

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if isWord(r) || unicode.IsSpace(r) || r == '-' || r == '\'' || r == '"' || r == '$' {
			b.WriteRune(r)
		}
	}
	title := truncateWords(strings.TrimSpace(b.String()), MaxTitleRunes)
	if title == "" {
		return strings.TrimSpace("Freestyle " + mediaID)
	}
	return title
}

// truncateWords shortens s to at most limit runes without splitting a word.
// When rune limit+1 is whitespace the first limit runes are kept whole;
// otherwise the cut backs off to the last whitespace. A single word longer
// than limit has no boundary to back off to and is hard-cut.
func truncateWords(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := runes[:limit]
	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

// Slugify lower-cases title, drops everything except word characters,
// whitespace and hyphens, collapses runs of whitespace, underscore and hyphen
// into one hyphen, and trims hyphens from both ends.
func Slugify(title string) string {
	lower := strings.ToLower(norm.NFC.String(title))

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			pendingSep = true
		case isWord(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Describe derives the presentation paragraph for a track. The lead
// paragraph (text before the first blank line, else the first line) is used
// when it has at least 50 runes, otherwise the first 500 runes of the whole
// caption. Hashtags and mentions are removed and whitespace collapsed. A
// result under MinDescriptionRunes is replaced by fallback with its
// TitlePlaceholder substituted.
func Describe(title, caption, fallback string) string {
	caption = NormalizeCaption(caption)

	var lead string
	if i := strings.Index(caption, "\n\n"); i >= 0 {
		lead = caption[:i]
	} else {
		lead = FirstLine(caption)
	}
	if utf8.RuneCountInString(lead) < minLeadRunes {
		lead = prefixRunes(caption, maxCaptionRunes)
	}

	desc := strings.Join(strings.Fields(stripTags(lead)), " ")
	if utf8.RuneCountInString(desc) < MinDescriptionRunes {
		return strings.ReplaceAll(fallback, TitlePlaceholder, title)
	}
	return desc
}

// stripTags removes #word and @word tokens. The sigil is kept when no word
// character follows it.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '#' || r == '@') && i+1 < len(runes) && isWord(runes[i+1]) {
			i++
			for i+1 < len(runes) && isWord(runes[i+1]) {
				i++
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// MatchesKeyword reports whether caption contains keyword, ignoring case.
func MatchesKeyword(caption, keyword string) bool {
	return strings.Contains(strings.ToLower(caption), strings.ToLower(keyword))
}
