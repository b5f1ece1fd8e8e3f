// Package types defines the shared data model of the shopping assistant:
// queries with rewrite lineage, retrieved evidence and grading verdicts,
// route decisions, responses, and the unified error taxonomy.
package types
