// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads the inspiration corpus: a JSON array of
// [title, abstract] pairs. Titles are normalized on ingest and
// deduplicated with first-seen-wins, so downstream stages can treat the
// title as a stable identity.
// Implements: prd001-corpus (R1.1-R1.4).
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/hypothesis-engine/internal/textnorm"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Corpus holds the ordered candidate papers and the title->abstract index
// built from them. The index is read-only after Load.
type Corpus struct {
	// Papers preserves the on-disk order after dedup.
	Papers []types.Paper

	// Abstracts maps canonical title to abstract.
	Abstracts map[string]string
}

// Titles returns the canonical titles in corpus order.
func (c *Corpus) Titles() []string {
	titles := make([]string, len(c.Papers))
	for i, p := range c.Papers {
		titles[i] = p.Title
	}
	return titles
}

// Len returns the number of papers after dedup.
func (c *Corpus) Len() int {
	return len(c.Papers)
}

// Load reads a corpus file and builds the index. Duplicate titles keep the
// first occurrence; the number dropped is returned for reporting.
func Load(path string) (*Corpus, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("parsing corpus %s: %w", path, err)
	}

	c := &Corpus{Abstracts: make(map[string]string)}
	dropped := 0
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, 0, fmt.Errorf("corpus %s: entry %d has %d elements, want [title, abstract]", path, i, len(pair))
		}
		title, abstract := textnorm.NormalizePair(pair[0], pair[1])
		if _, seen := c.Abstracts[title]; seen {
			dropped++
			continue
		}
		c.Abstracts[title] = abstract
		c.Papers = append(c.Papers, types.Paper{Title: title, Abstract: abstract})
	}
	return c, dropped, nil
}

// Write saves papers back to the [[title, abstract], ...] JSON layout.
// Used by the corpus clean subcommand.
func Write(path string, papers []types.Paper) error {
	raw := make([][]string, len(papers))
	for i, p := range papers {
		raw[i] = []string{p.Title, p.Abstract}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus %s: %w", path, err)
	}
	return nil
}
