package rag

import (
	"fmt"
	"strings"
)

// BuildPrompt builds the system prompt for the chat model. With usable
// retrieved context it embeds the IS code reference block and rules that pin
// the model to the exact clause numbers supplied; without it, a short base
// prompt with generic answering rules.
func BuildPrompt(domainContext string, rc Context) string {
	basePrompt := fmt.Sprintf("You are CivilLLM, an expert AI assistant for civil engineering specializing in %s.", domainContext)

	if rc.Empty() {
		return basePrompt + `

RULES:
- Be concise. Don't over-explain.
- Answer ONLY what was asked.
- Mention the clause you're referring to.
- Use markdown formatting.`
	}

	var sources strings.Builder
	for i, c := range rc.Citations {
		fmt.Fprintf(&sources, "%d. %s\n", i+1, c)
	}

	return fmt.Sprintf(`%s

**IS CODE REFERENCE:**

%s

**RULES:**
1. Be concise. Don't over-explain.
2. Answer ONLY what was asked - nothing more.
3. Always mention the clause you're referring to (e.g., "As per Clause 13.5...")
4. Use the EXACT clause numbers from the sources above.
5. Use **bold** for key values and bullet points for lists.

**Sources:**
%s`, basePrompt, rc.ContextText, strings.TrimRight(sources.String(), "\n"))
}

// FormatCitations formats the reference block appended to a generated answer.
// Returns "" when there are no citations.
func FormatCitations(citations []string) string {
	if len(citations) == 0 {
		return ""
	}
	return "\n\n---\n**Ref:** " + strings.Join(citations, ", ")
}
