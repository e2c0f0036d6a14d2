package dataset

import (
	"fmt"

	"github.com/growlab/growlab-cli/internal/config"
)

// Problem records a recoverable loading issue tied to one site. Problems
// accumulate alongside whatever data did load; callers decide whether to
// warn or halt.
type Problem struct {
	// Site is the configured site ID the problem belongs to.
	Site string `json:"site"`
	// Source is the file or sheet involved, when known.
	Source string `json:"source,omitempty"`
	Err    error  `json:"-"`
}

func (p Problem) Error() string {
	if p.Source != "" {
		return fmt.Sprintf("%s (%s): %v", p.Site, p.Source, p.Err)
	}
	return fmt.Sprintf("%s: %v", p.Site, p.Err)
}

// Message is the problem text without the site prefix, for JSON payloads.
func (p Problem) Message() string {
	if p.Err == nil {
		return ""
	}
	return p.Err.Error()
}

// Collection holds the tables that loaded for a set of sites, keyed by
// site ID, plus the problems hit along the way. A site absent from Tables
// simply has no data; every row in a present table is already tagged with
// its site.
type Collection struct {
	Tables   map[string]*Table
	Problems []Problem
}

// Empty reports whether no site produced any data.
func (c *Collection) Empty() bool {
	return c == nil || len(c.Tables) == 0
}

// Site returns the table for a site ID, nil when the site has no data.
func (c *Collection) Site(id string) *Table {
	if c == nil {
		return nil
	}
	return c.Tables[id]
}

// PresentSites filters the configured sites down to those with data,
// preserving configured order.
func (c *Collection) PresentSites(sites []config.Site) []config.Site {
	if c == nil {
		return nil
	}
	out := make([]config.Site, 0, len(sites))
	for _, s := range sites {
		if _, ok := c.Tables[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Rows sums data rows across all present sites.
func (c *Collection) Rows() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, t := range c.Tables {
		n += t.Len()
	}
	return n
}
