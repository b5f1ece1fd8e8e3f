// Package workflow implements the agentic retrieval pipeline: a per-run
// state machine that classifies a shopping query, retrieves and grades
// candidate evidence, falls back to a single rewrite-and-web-search cycle
// when evidence is weak, and produces the terminal response.
//
// Each run owns its WorkflowState exclusively; independent runs share no
// mutable state and may execute concurrently. The only blocking operations
// are the calls into the language model and the retrieval collaborators.
package workflow
