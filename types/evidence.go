package types

// EvidenceSource tags the provenance of a retrieved evidence item.
type EvidenceSource string

const (
	SourceVectorIndex EvidenceSource = "vector_index" // pre-indexed product corpus
	SourceWebSearch   EvidenceSource = "web_search"   // live web search
)

// EvidenceItem is one unit of retrieved material. Immutable once produced.
// SourceID is an opaque identifier: a product reference for vector-index
// results, a URL for web results.
type EvidenceItem struct {
	Content  string         `json:"content"`
	Source   EvidenceSource `json:"source"`
	SourceID string         `json:"source_id"`
}

// Verdict is the binary relevance judgment for one evidence item.
type Verdict string

const (
	VerdictRelevant   Verdict = "relevant"
	VerdictIrrelevant Verdict = "irrelevant"
)

// GradedEvidence pairs an EvidenceItem with the verdict it received and the
// query text it was graded against. Grading is query-relative: the same item
// graded against two queries yields two distinct records.
type GradedEvidence struct {
	Item    EvidenceItem `json:"item"`
	Verdict Verdict      `json:"verdict"`
	Query   string       `json:"query"`
}

// Relevant reports whether the item was judged relevant.
func (g GradedEvidence) Relevant() bool { return g.Verdict == VerdictRelevant }

// CountRelevant returns the number of relevant verdicts in graded.
func CountRelevant(graded []GradedEvidence) int {
	n := 0
	for _, g := range graded {
		if g.Relevant() {
			n++
		}
	}
	return n
}

// FilterRelevant returns the relevant items from graded, preserving order.
func FilterRelevant(graded []GradedEvidence) []EvidenceItem {
	var items []EvidenceItem
	for _, g := range graded {
		if g.Relevant() {
			items = append(items, g.Item)
		}
	}
	return items
}
