package query

import (
	"fmt"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
)

// chunkContext is one retrieved chunk prepared for prompting.
type chunkContext struct {
	Citation string
	Title    string
	Content  string
}

// citationLabel builds the display citation for a chunk, e.g.
// "Cincinnati Code §856-17".
func citationLabel(jurisdictionName string, chunk *entity.OrdinanceChunk) string {
	label := fmt.Sprintf("%s Code §%s", jurisdictionName, chunk.Chapter)
	if chunk.Section != nil && *chunk.Section != "" {
		label += "-" + *chunk.Section
	}
	return label
}

// buildSystemPrompt pins the model to the retrieved ordinance text. The
// rules forbid fabrication outright; a vague question gets clarifying
// questions back instead of a guess.
func buildSystemPrompt(jurisdictionName string) string {
	return fmt.Sprintf(`You are a helpful assistant that answers questions about local ordinances and regulations.

CRITICAL RULES - FOLLOW EXACTLY:
1. ONLY use information from the provided ordinance sections - NEVER guess or make up information
2. Always cite specific sections using the format: [%s Code §123-45]
3. If the question is VAGUE or UNCLEAR, ask clarifying questions to narrow down the exact regulation
4. If multiple regulations might apply, list the options and ask which situation applies to the user
5. If the answer isn't in the provided context, say "I don't have information about that in the %s ordinances"
6. NEVER hallucinate - if you're not sure, ask for clarification instead of guessing

FUNNELING STRATEGY:
- If the question is too broad (e.g., "can I build?"), ask: "What type of structure? (fence, shed, deck, addition, etc.)"
- If location matters, ask: "What is your property zoning? (residential, commercial, etc.)"
- If multiple rules apply, present options: "This could apply to: 1) X, 2) Y. Which describes your situation?"

ONLY provide a definitive answer when you have a clear match in the ordinance text.`, jurisdictionName, jurisdictionName)
}

func buildUserPrompt(question, jurisdictionName, state string, context []chunkContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Location: %s, %s\n\n", jurisdictionName, state)
	b.WriteString("Relevant Ordinance Sections:\n\n")

	for i, c := range context {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "\n[%d] %s - %s\n%s\n", i+1, c.Citation, c.Title, c.Content)
	}

	b.WriteString("\nAnswer the question based ONLY on the ordinance sections above. Include specific citations in your answer.")

	return b.String()
}

// confidence phrases that mark a hedged answer
var uncertaintyPhrases = []string{
	"don't know",
	"not sure",
	"may need to",
	"consult",
	"unclear",
	"doesn't specify",
	"don't have information",
}

// answerConfidence grades the answer from retrieval quality and hedging
// language. Similarities here are raw cosine values, not display percents.
func answerConfidence(similarities []float64, answer string) string {
	if len(similarities) == 0 {
		return "low"
	}

	top := similarities[0]
	var sum float64
	for _, s := range similarities {
		sum += s
	}
	avg := sum / float64(len(similarities))

	answerLower := strings.ToLower(answer)
	hedged := false
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(answerLower, phrase) {
			hedged = true
			break
		}
	}

	if top > 0.8 && avg > 0.7 && !hedged {
		return "high"
	}
	if top > 0.6 && avg > 0.5 {
		return "medium"
	}
	return "low"
}
