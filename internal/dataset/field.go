package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Field identifies a well-known measurement column. Raw tables keep their
// original headers; fields are how aggregation and charts address columns
// without caring which spelling (or language) the header used.
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldPH          Field = "ph"
	FieldEC          Field = "ec"
	FieldTimestamp   Field = "timestamp"

	FieldFreshWeight Field = "fresh_weight"
	FieldLeafCount   Field = "leaf_count"
	FieldShootLength Field = "shoot_length"
)

// EnvironmentFields lists the numeric fields an environment table carries.
func EnvironmentFields() []Field {
	return []Field{FieldTemperature, FieldHumidity, FieldPH, FieldEC}
}

// GrowthFields lists the numeric fields a growth table carries.
func GrowthFields() []Field {
	return []Field{FieldFreshWeight, FieldLeafCount, FieldShootLength}
}

// ParseField maps a user-supplied name (flag or query parameter) to a Field.
func ParseField(s string) (Field, error) {
	key := headerKey(s)
	for f := range fieldAliases {
		if string(f) == key || strings.ReplaceAll(string(f), "_", "") == key {
			return f, nil
		}
	}
	for f, aliases := range fieldAliases {
		for _, a := range aliases {
			if a == key {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Label returns the English display name for a field.
func (f Field) Label() string {
	switch f {
	case FieldTemperature:
		return "temperature"
	case FieldHumidity:
		return "humidity"
	case FieldPH:
		return "pH"
	case FieldEC:
		return "conductivity"
	case FieldTimestamp:
		return "timestamp"
	case FieldFreshWeight:
		return "fresh weight"
	case FieldLeafCount:
		return "leaf count"
	case FieldShootLength:
		return "shoot length"
	}
	return string(f)
}

// Unit returns the measurement unit for a field, empty when dimensionless.
func (f Field) Unit() string {
	switch f {
	case FieldTemperature:
		return "℃"
	case FieldHumidity:
		return "%"
	case FieldEC:
		return "dS/m"
	case FieldFreshWeight:
		return "g"
	case FieldShootLength:
		return "mm"
	}
	return ""
}

// fieldAliases maps each field to the header spellings seen in the school
// uploads. Keys are headerKey-normalized (lowercase, NFC, separators and
// unit suffixes stripped), so "생체중(g)", "생체중 (g)" and "FreshWeight"
// all land on the same alias.
var fieldAliases = map[Field][]string{
	FieldTemperature: {"온도", "기온", "temperature", "temp"},
	FieldHumidity:    {"습도", "humidity", "rh"},
	FieldPH:          {"ph", "산도"},
	FieldEC:          {"ec", "전기전도도", "전도도", "conductivity"},
	FieldTimestamp:   {"측정시각", "측정일시", "일시", "날짜", "timestamp", "datetime", "time", "date"},
	FieldFreshWeight: {"생체중", "생중량", "freshweight", "weight"},
	FieldLeafCount:   {"잎수", "엽수", "leafcount", "leaves"},
	FieldShootLength: {"초장", "줄기길이", "shootlength", "plantheight"},
}

// matchField reports which field a raw header belongs to, if any.
func matchField(header string) (Field, bool) {
	key := headerKey(header)
	if key == "" {
		return "", false
	}
	for f, aliases := range fieldAliases {
		for _, a := range aliases {
			if key == a {
				return f, true
			}
		}
	}
	return "", false
}

var unitSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`),  // 생체중(g)
	regexp.MustCompile(`^(.*?)\s*\[([^\]]*)\]\s*$`), // Mass [mg/L]
}

// headerKey canonicalizes a header for alias matching: trims, strips one
// trailing parenthesized/bracketed unit, composes to NFC, lowercases, and
// drops separator characters.
func headerKey(s string) string {
	key := strings.TrimSpace(s)
	for _, p := range unitSuffixPatterns {
		if m := p.FindStringSubmatch(key); len(m) >= 2 && strings.TrimSpace(m[1]) != "" {
			key = strings.TrimSpace(m[1])
			break
		}
	}
	key = norm.NFC.String(key)
	key = strings.ToLower(key)
	key = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '_', '-', '.':
			return -1
		}
		return r
	}, key)
	return key
}

// ParseNumber reads a cell as a float64, tolerating blank cells, percent
// suffixes, NBSP padding, and thousands separators. The second return is
// false when the cell holds no usable number.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", ""))
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if cpos := strings.LastIndex(raw, ","); cpos >= 0 {
		switch dpos := strings.LastIndex(raw, "."); {
		case dpos > cpos:
			// 1,234.5 style: commas are grouping
			raw = strings.ReplaceAll(raw, ",", "")
		case dpos >= 0:
			// 1.234,5 style: dots are grouping, the comma is the decimal
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		case len(raw)-cpos-1 == 3:
			// 1,234 style: comma is grouping
			raw = strings.ReplaceAll(raw, ",", "")
		default:
			// 3,5 style: decimal comma
			raw = strings.ReplaceAll(raw, ",", ".")
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// parseTimeMaybe attempts the timestamp layouts the uploads have used.
func parseTimeMaybe(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
