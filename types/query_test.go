package types

import "testing"

func TestNewQuery_Trims(t *testing.T) {
	q := NewQuery("  price of Galaxy S25  ")
	if q.Text() != "price of Galaxy S25" {
		t.Errorf("expected trimmed text, got %q", q.Text())
	}
	if q.Rewrites() != 0 {
		t.Errorf("expected zero rewrites, got %d", q.Rewrites())
	}
	if NewQuery("   ").IsEmpty() != true {
		t.Error("expected whitespace-only query to be empty")
	}
}

func TestQuery_Rewritten_ExtendsLineage(t *testing.T) {
	q0 := NewQuery("best budget phone")
	q1 := q0.Rewritten("budget smartphone price comparison")
	q2 := q1.Rewritten("cheap smartphone deals")

	if q0.Rewrites() != 0 {
		t.Errorf("original must be untouched, got %d rewrites", q0.Rewrites())
	}
	if q1.Rewrites() != 1 || q2.Rewrites() != 2 {
		t.Errorf("expected rewrite counts 1 and 2, got %d and %d", q1.Rewrites(), q2.Rewrites())
	}

	lineage := q2.Lineage()
	if len(lineage) != 2 || lineage[0] != "best budget phone" || lineage[1] != "budget smartphone price comparison" {
		t.Errorf("unexpected lineage: %v", lineage)
	}
	if q2.Original() != "best budget phone" {
		t.Errorf("expected original text preserved, got %q", q2.Original())
	}
}

func TestQuery_Lineage_ReturnsCopy(t *testing.T) {
	q := NewQuery("a").Rewritten("b")
	lineage := q.Lineage()
	lineage[0] = "mutated"

	if q.Lineage()[0] != "a" {
		t.Error("mutating the returned lineage must not affect the query")
	}
}

func TestGradedEvidence_Helpers(t *testing.T) {
	graded := []GradedEvidence{
		{Item: EvidenceItem{Content: "a", Source: SourceVectorIndex, SourceID: "p1"}, Verdict: VerdictRelevant},
		{Item: EvidenceItem{Content: "b", Source: SourceVectorIndex, SourceID: "p2"}, Verdict: VerdictIrrelevant},
		{Item: EvidenceItem{Content: "c", Source: SourceWebSearch, SourceID: "http://x"}, Verdict: VerdictRelevant},
	}

	if CountRelevant(graded) != 2 {
		t.Errorf("expected 2 relevant, got %d", CountRelevant(graded))
	}

	items := FilterRelevant(graded)
	if len(items) != 2 || items[0].SourceID != "p1" || items[1].SourceID != "http://x" {
		t.Errorf("expected order-preserving relevant filter, got %v", items)
	}
}
