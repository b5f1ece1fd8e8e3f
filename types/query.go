package types

import "strings"

// Query is an immutable query string together with its rewrite lineage:
// the ordered list of prior query texts, oldest first. A rewrite produces
// a new Query whose lineage extends the old one; the original is never
// mutated, so concurrent runs can share Query values freely.
type Query struct {
	text    string
	lineage []string
}

// NewQuery creates a Query with an empty lineage. The text is trimmed;
// validation of emptiness is the caller's concern (see workflow.Orchestrator).
func NewQuery(text string) Query {
	return Query{text: strings.TrimSpace(text)}
}

// Text returns the current query text.
func (q Query) Text() string { return q.text }

// IsEmpty reports whether the query text is empty after trimming.
func (q Query) IsEmpty() bool { return q.text == "" }

// Lineage returns a copy of the prior query texts, oldest first.
func (q Query) Lineage() []string {
	if len(q.lineage) == 0 {
		return nil
	}
	out := make([]string, len(q.lineage))
	copy(out, q.lineage)
	return out
}

// Rewrites returns how many times this query has been rewritten.
func (q Query) Rewrites() int { return len(q.lineage) }

// Original returns the very first query text in the lineage.
func (q Query) Original() string {
	if len(q.lineage) > 0 {
		return q.lineage[0]
	}
	return q.text
}

// Rewritten returns a new Query with the given text whose lineage extends
// this query's lineage by this query's text.
func (q Query) Rewritten(text string) Query {
	lineage := make([]string, 0, len(q.lineage)+1)
	lineage = append(lineage, q.lineage...)
	lineage = append(lineage, q.text)
	return Query{text: strings.TrimSpace(text), lineage: lineage}
}
