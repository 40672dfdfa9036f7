package catalog

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

const testFallback = "{title} - An off-the-dome freestyle."

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Freestyle!! #1", "my-freestyle-1"},
		{"Dropped a new Freestyle today", "dropped-a-new-freestyle-today"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"snake_case and   spaces", "snake-case-and-spaces"},
		{"a!b", "ab"},
		{"Money $$$ moves", "money-moves"},
		{"Café Freestyle", "café-freestyle"},
		{"🔥🔥🔥", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyIsDeterministicAcrossNormalizationForms(t *testing.T) {
	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"
	if Slugify(composed) != Slugify(decomposed) {
		t.Fatalf("NFC/NFD slugs differ: %q vs %q", Slugify(composed), Slugify(decomposed))
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		mediaID string
		want    string
	}{
		{"first line only", "Dropped a new Freestyle today!\n\nStreet vibes", "1", "Dropped a new Freestyle today"},
		{"keeps allowed punctuation", `Can't stop "the" $ flow - part 2 🔥`, "1", `Can't stop "the" $ flow - part 2`},
		{"emoji only falls back", "🔥🔥 ✨", "999", "Freestyle 999"},
		{"empty falls back", "", "42", "Freestyle 42"},
		{"empty without media id", "", "", "Freestyle"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanTitle(tc.caption, tc.mediaID); got != tc.want {
				t.Fatalf("CleanTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCleanTitleTruncationNeverSplitsWords(t *testing.T) {
	captions := []string{
		"This freestyle goes on and on about the city lights and the late night grind",
		"Exactly sixty characters here to test the boundary condition ok and more",
		"Supercalifragilisticexpialidocious freestyle session recorded live downtown tonight",
		strings.Repeat("word ", 30),
		strings.Repeat("ab ", 40),
	}
	for _, caption := range captions {
		cleaned := strings.TrimSpace(caption)
		title := CleanTitle(caption, "1")
		n := utf8.RuneCountInString(title)
		if n > MaxTitleRunes {
			t.Fatalf("title %q has %d runes", title, n)
		}
		if !strings.HasPrefix(cleaned, title) {
			t.Fatalf("title %q is not a prefix of %q", title, cleaned)
		}
		rest := []rune(cleaned)[n:]
		if len(rest) > 0 && !unicode.IsSpace(rest[0]) {
			t.Fatalf("title %q splits a word (next rune %q)", title, rest[0])
		}
	}
}

func TestCleanTitleKeepsFullWidthWhenBoundaryFollows(t *testing.T) {
	caption := strings.Repeat("a", 59) + "b c"
	if got := CleanTitle(caption, "1"); got != strings.Repeat("a", 59)+"b" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTitleHardCutsSingleLongWord(t *testing.T) {
	caption := strings.Repeat("x", 80)
	if got := CleanTitle(caption, "1"); got != strings.Repeat("x", 60) {
		t.Fatalf("got %q", got)
	}
}

func TestDescribe(t *testing.T) {
	long := "Street vibes from the Detroit riverfront, cold air and warm bars, one take no edits, straight from the dome."

	tests := []struct {
		name    string
		title   string
		caption string
		want    string
	}{
		{
			name:    "tags only falls back",
			title:   "Lit",
			caption: "#lit @someone",
			want:    "Lit - An off-the-dome freestyle.",
		},
		{
			name:    "short caption falls back",
			title:   "Dropped a new Freestyle today",
			caption: "Dropped a new Freestyle today!\n\nStreet vibes, Detroit heat. #rap @fan",
			want:    "Dropped a new Freestyle today - An off-the-dome freestyle.",
		},
		{
			name:    "long lead paragraph kept",
			title:   "T",
			caption: long + " #rap\n\nsecond paragraph @fan",
			want:    long,
		},
		{
			name:    "short lead uses caption prefix",
			title:   "T",
			caption: "Freestyle!\n\n" + long + " @fan #bars",
			want:    "Freestyle! " + long,
		},
		{
			name:    "single line caption",
			title:   "T",
			caption: long + "\nmore   spaced\ttext",
			want:    long,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.title, tc.caption, testFallback); got != tc.want {
				t.Fatalf("Describe =\n %q\nwant\n %q", got, tc.want)
			}
		})
	}
}

func TestDescribeCapsCaptionPrefix(t *testing.T) {
	caption := "short\n\n" + strings.Repeat("z", 600)
	got := Describe("T", caption, testFallback)
	// 500 runes of caption are "short\n\n" plus 493 z; the blank line collapses to one space.
	if want := "short " + strings.Repeat("z", 493); got != want {
		t.Fatalf("expected capped prefix, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct{ in, want string }{
		{"#lit @someone", " "},
		{"email me@home", "email me"},
		{"a # b @ c", "a # b @ c"},
		{"#tag_with_underscore!", "!"},
	}
	for _, tc := range tests {
		if got := stripTags(tc.in); got != tc.want {
			t.Errorf("stripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchesKeyword(t *testing.T) {
	if !MatchesKeyword("New FREESTYLE drop", "freestyle") {
		t.Fatal("expected case-insensitive match")
	}
	if MatchesKeyword("free style", "freestyle") {
		t.Fatal("unexpected match across a space")
	}
}
