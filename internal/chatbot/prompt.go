package chatbot

import (
	"fmt"
	"strings"
)

// The prompt template and the short-circuit on empty context are the
// load-bearing contract of this service; the frontend and its tests depend
// on the exact wording.

const systemPrompt = "You are a helpful assistant that answers questions based on provided context."

const fallbackAnswer = "I couldn't find relevant information to answer your question."

const promptTemplate = `You are a knowledgeable assistant. Answer the user's question based on the following relevant information from the knowledge base.

Relevant Information:
%s

User Question: %s

Instructions:
- Answer based on the provided information and context only
- Provide comprehensive, detailed responses when the question requires it
- If the information doesn't fully answer the question, say so
- Synthesize information from multiple sources when relevant
- Maintain the tone and style of the knowledge base
- Use examples and explanations where helpful
- Never give any reference from quran

Answer:`

// buildPrompt assembles the generation prompt from the retrieved context
// pairs, in ranked order, followed by the user's question.
func buildPrompt(question string, items []ContextItem) string {
	pairs := make([]string, len(items))
	for i, item := range items {
		pairs[i] = fmt.Sprintf("Q: %s\nA: %s", item.Instruction, item.Output)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(pairs, "\n\n"), question)
}
