package dataset

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/growlab/growlab-cli/internal/config"
)

func TestResolveMatchesAcrossNormalizationForms(t *testing.T) {
	composed := "한빛중학교_환경데이터.csv"
	decomposed := norm.NFD.String(composed)
	if composed == decomposed {
		t.Fatalf("fixture must differ between forms")
	}

	cases := []struct {
		name    string
		entries []string
		want    string
	}{
		{"composed entry, composed want", []string{"readme.txt", composed}, composed},
		{"decomposed entry, composed want", []string{"readme.txt", decomposed}, composed},
		{"composed entry, decomposed want", []string{composed}, decomposed},
		{"decomposed entry, decomposed want", []string{decomposed}, decomposed},
	}
	for _, tc := range cases {
		got, ok := Resolve(tc.entries, tc.want)
		if !ok {
			t.Fatalf("%s: no match", tc.name)
		}
		if want := tc.entries[len(tc.entries)-1]; got != want {
			t.Fatalf("%s: got %q, want the listed entry %q", tc.name, got, want)
		}
	}
}

func TestResolveReturnsEntryVerbatim(t *testing.T) {
	composed := "가온중학교_환경데이터.csv"
	decomposed := norm.NFD.String(composed)
	entries := []string{decomposed}

	got, ok := Resolve(entries, composed)
	if !ok {
		t.Fatalf("expected a match")
	}
	if got != decomposed {
		t.Fatalf("got %q, want the directory's own spelling %q", got, decomposed)
	}
}

func TestResolveNoMatch(t *testing.T) {
	entries := []string{"한빛중학교_환경데이터.csv", "notes.txt"}
	if got, ok := Resolve(entries, "다솔중학교_환경데이터.csv"); ok {
		t.Fatalf("unexpected match %q", got)
	}
	if _, ok := Resolve(nil, "anything.csv"); ok {
		t.Fatalf("match against empty listing")
	}
}

func TestSheetSiteMatching(t *testing.T) {
	sites := []config.Site{
		{ID: "hanbit", Name: "한빛중학교"},
		{ID: "gaon", Name: "가온중학교"},
	}

	cases := []struct {
		sheet  string
		wantID string
		wantOK bool
	}{
		{"한빛중학교", "hanbit", true},
		{"한빛중학교 (1주차)", "hanbit", true},
		{norm.NFD.String("가온중학교 생육"), "gaon", true},
		{"Sheet1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		id, ok := SheetSite(tc.sheet, sites)
		if ok != tc.wantOK || id != tc.wantID {
			t.Fatalf("SheetSite(%q) = %q, %v; want %q, %v", tc.sheet, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestSheetSiteFirstConfiguredWins(t *testing.T) {
	// The sheet name contains both site names; configured order breaks the tie.
	sites := []config.Site{
		{ID: "short", Name: "한빛"},
		{ID: "full", Name: "한빛중학교"},
	}
	id, ok := SheetSite("한빛중학교", sites)
	if !ok || id != "short" {
		t.Fatalf("SheetSite = %q, %v; want first configured site %q", id, ok, "short")
	}
}
