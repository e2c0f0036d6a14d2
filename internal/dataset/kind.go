package dataset

import (
	"fmt"
	"strings"
)

// Kind distinguishes the two datasets a site carries.
type Kind string

const (
	KindEnvironment Kind = "environment"
	KindGrowth      Kind = "growth"
)

// ParseKind maps a flag or query value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "environment", "env":
		return KindEnvironment, nil
	case "growth":
		return KindGrowth, nil
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// Label returns the Korean dataset label the school files use.
func (k Kind) Label() string {
	switch k {
	case KindEnvironment:
		return "환경데이터"
	case KindGrowth:
		return "생육데이터"
	}
	return string(k)
}

// Fields lists the numeric fields tables of this kind carry.
func (k Kind) Fields() []Field {
	switch k {
	case KindEnvironment:
		return EnvironmentFields()
	case KindGrowth:
		return GrowthFields()
	}
	return nil
}
