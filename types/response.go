package types

// RouteDecision classifies a query: answerable only from the product corpus
// (or web fallback), or from direct model knowledge.
type RouteDecision string

const (
	RouteProductGrounded RouteDecision = "product_grounded"
	RouteGeneral         RouteDecision = "general"
)

// Valid reports whether d is one of the two defined decisions.
func (d RouteDecision) Valid() bool {
	return d == RouteProductGrounded || d == RouteGeneral
}

// Response is the terminal answer of one workflow run: the answer text and
// the evidence it was grounded on. An empty Evidence list is a successful,
// ungrounded answer. Callers distinguish grounded from ungrounded answers
// via this list, never by parsing the text.
type Response struct {
	Answer   string         `json:"answer"`
	Evidence []EvidenceItem `json:"evidence,omitempty"`
}

// Grounded reports whether the answer was built on retrieved evidence.
func (r *Response) Grounded() bool { return len(r.Evidence) > 0 }
