package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonesrussell/trendwatch/internal/domain"
)

func TestTruncateText(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		wantRunes int
	}{
		{name: "short text unchanged", text: "red hoodie", wantRunes: 10},
		{name: "exact limit unchanged", text: strings.Repeat("a", domain.MaxTextLength), wantRunes: domain.MaxTextLength},
		{name: "ascii over limit", text: strings.Repeat("a", domain.MaxTextLength+50), wantRunes: domain.MaxTextLength},
		{
			name:      "limit falls inside multi-byte run",
			text:      strings.Repeat("a", domain.MaxTextLength-1) + "👗👗👗",
			wantRunes: domain.MaxTextLength,
		},
		{name: "empty", text: "", wantRunes: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.TruncateText(tc.text)
			if !utf8.ValidString(got) {
				t.Error("truncated text is not valid UTF-8")
			}
			if n := utf8.RuneCountInString(got); n != tc.wantRunes {
				t.Errorf("rune count = %d, want %d", n, tc.wantRunes)
			}
			if !strings.HasPrefix(tc.text, got) {
				t.Error("truncation changed the kept prefix")
			}
		})
	}
}

func TestTruncateText_KeepsWholeRuneAtBoundary(t *testing.T) {
	text := strings.Repeat("a", domain.MaxTextLength-1) + "👗👗"
	got := domain.TruncateText(text)
	if !strings.HasSuffix(got, "👗") {
		t.Errorf("boundary rune should be kept whole, got suffix %q", got[len(got)-4:])
	}
}
