package workflow

import (
	"time"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// RunState identifies a position in the answering state machine.
type RunState string

const (
	StateRouting            RunState = "routing"
	StateGeneralAnswer      RunState = "general_answer"
	StateRetrieving         RunState = "retrieving"
	StateGrading            RunState = "grading"
	StateRewriting          RunState = "rewriting"
	StateRetrievingFallback RunState = "retrieving_fallback"
	StateGradingFallback    RunState = "grading_fallback"
	StateAnswering          RunState = "answering"
	StateDone               RunState = "done"
)

// Terminal reports whether the state machine has finished.
func (s RunState) Terminal() bool { return s == StateDone }

// WorkflowState is the mutable record threaded through one answering run.
// It is owned exclusively by that run and discarded when the run completes.
// Retrieved and Graded always hold the most recent pass only; evidence is
// never accumulated across passes.
type WorkflowState struct {
	RunID     string
	State     RunState
	Query     types.Query
	Route     types.RouteDecision
	Retrieved []types.EvidenceItem
	Graded    []types.GradedEvidence
	Rewrites  int
	Response  *types.Response
	StartedAt time.Time
}
