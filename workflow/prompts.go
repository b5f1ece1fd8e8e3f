package workflow

import (
	"fmt"
	"strings"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

const classifyPromptTmpl = `You are the query router of a shopping assistant backed by a product catalog.

Classify the user's question:
- product_grounded: asks about products, prices, availability, specs, or comparisons that product data could answer
- general: greetings, small talk, or questions unrelated to the product catalog

Question: %s

Respond in JSON format:
{"route": "product_grounded" | "general"}`

const gradePromptTmpl = `You are grading retrieved material for a shopping assistant.

Question: %s

Retrieved material:
%s

Does this material help answer the question? Respond in JSON format:
{"verdict": "relevant" | "irrelevant"}`

const rewritePromptTmpl = `A shopping assistant retrieved nothing useful for this question. Rewrite it as a short web search query that is more likely to find product information. Reply with the query only, no quotes or explanation.

Question: %s`

const generateGroundedTmpl = `You are a shopping assistant. Answer the question using only the evidence below. Cite concrete prices and specs when the evidence contains them. If the evidence is insufficient, say what is missing instead of inventing details.

Question: %s

Evidence:
%s

Answer:`

const generateDirectTmpl = `You are a friendly shopping assistant. Answer the user's message from general knowledge. If it asks about specific products you have no data for, say so honestly.

Message: %s

Answer:`

func classifyPrompt(q types.Query) string {
	return fmt.Sprintf(classifyPromptTmpl, q.Text())
}

func gradePrompt(q types.Query, item types.EvidenceItem) string {
	return fmt.Sprintf(gradePromptTmpl, q.Text(), item.Content)
}

func rewritePrompt(q types.Query) string {
	return fmt.Sprintf(rewritePromptTmpl, q.Text())
}

func generatePrompt(q types.Query, grounding []types.EvidenceItem) string {
	if len(grounding) == 0 {
		return fmt.Sprintf(generateDirectTmpl, q.Text())
	}
	var sb strings.Builder
	for i, item := range grounding {
		fmt.Fprintf(&sb, "[%d] (%s: %s)\n%s\n\n", i+1, item.Source, item.SourceID, item.Content)
	}
	return fmt.Sprintf(generateGroundedTmpl, q.Text(), strings.TrimRight(sb.String(), "\n"))
}

// extractJSON pulls the outermost JSON object out of a model response that
// may wrap it in prose or code fences.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}
