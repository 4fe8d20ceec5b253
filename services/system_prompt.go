package services

import (
	"strings"

	"github/itish2003/invoicechat/models"

	"google.golang.org/genai"
)

// GetSystemPrompt defines the core instructions for the invoice assistant.
func GetSystemPrompt() *genai.Content {
	prompt := `You are a document analysis assistant specialised in invoices. Answer from the invoice content you are given.

Rules:
1.  **Stay on the invoice**: base every answer on the provided context. If the invoice does not contain the requested information, say that it is not available.
2.  **Be concise**: use bullet points or numbered lists where they help.
3.  **Be quantitative**: when a question needs calculations, comparisons or totals, work them out from the invoice figures and show the result.
4.  **Explain terms**: when a question is general or vague, explain the relevant invoice fields. Use the 'lookupInvoiceTerm' tool for definitions of fields such as GST number, HSN code or reverse charge.
5.  **Search when needed**: if the context below is not enough, call 'retrieveDocuments' with a short search query before answering.

Do not invent figures.`

	contents := genai.Text(prompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}

// BuildQuestionPrompt places the retrieved invoice excerpts ahead of the
// user's question.
func BuildQuestionPrompt(question string, context []models.SourceDocument) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	if len(context) == 0 {
		sb.WriteString("(no matching invoice excerpts)\n")
	}
	for i, doc := range context {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(strings.TrimSpace(doc.Text))
		sb.WriteString("\n")
	}
	sb.WriteString("\nUser Question: ")
	sb.WriteString(question)
	return sb.String()
}
