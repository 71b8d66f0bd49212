package llm

import "strings"

const systemPrompt = `You are an assistant answering questions about a fixed set of reference documents.

Your role:
- Answer the question using ONLY the pieces of retrieved context below.
- If the context does not contain the answer, say that you don't know. Do NOT make up an answer.
- Keep the answer concise: three sentences maximum.

General style guidelines:
- Answer in the SAME LANGUAGE as the question.
- Use simple, everyday language, not technical jargon.
- Do not mention the retrieval mechanism or that you were given context.
`

// BuildPrompt assembles the full generation prompt from the retrieved
// context and the user's question.
func BuildPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\nContext:\n")
	if contextText == "" {
		b.WriteString("(no relevant documents found)\n")
	} else {
		b.WriteString(contextText)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
