package dataset

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/growlab/growlab-cli/internal/config"
)

// Resolve finds the entry matching want among entries, treating names as
// equal when their NFC forms match or their NFD forms match. Korean file
// names arrive in both forms: macOS Finder uploads decompose Hangul into
// conjoining jamo while web uploads keep precomposed syllables, and a
// byte-wise lookup misses one or the other. Returns the entry exactly as
// listed so the caller can open it verbatim.
func Resolve(entries []string, want string) (string, bool) {
	wantC := norm.NFC.String(want)
	wantD := norm.NFD.String(want)
	for _, e := range entries {
		if norm.NFC.String(e) == wantC || norm.NFD.String(e) == wantD {
			return e, true
		}
	}
	return "", false
}

// SheetSite maps a worksheet name to the configured site it belongs to.
// A sheet matches when, under either normalization form, its name equals
// a site name or contains it as a substring; decorated names like
// "한빛중학교 (1주차)" still match. Sites are tried in configured order
// and the first match wins.
func SheetSite(sheet string, sites []config.Site) (string, bool) {
	sheetC := norm.NFC.String(sheet)
	sheetD := norm.NFD.String(sheet)
	for _, s := range sites {
		nameC := norm.NFC.String(s.Name)
		nameD := norm.NFD.String(s.Name)
		if strings.Contains(sheetC, nameC) || strings.Contains(sheetD, nameD) {
			return s.ID, true
		}
	}
	return "", false
}
