package services

import "google.golang.org/genai"

const (
	toolRetrieveDocuments = "retrieveDocuments"
	toolLookupInvoiceTerm = "lookupInvoiceTerm"
)

// GetAllTools defines the functions Gemini may call while answering.
func GetAllTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        toolRetrieveDocuments,
					Description: "Search the indexed invoices for passages relevant to a specific field, item or question.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "A concise search query, e.g. 'GST number of the seller' or 'shipping charges'.",
							},
						},
						Required: []string{"query"},
					},
				},
				{
					Name:        toolLookupInvoiceTerm,
					Description: "Look up the definition of a standard invoice field such as 'hsn_number', 'reverse_charge' or 'seller'.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"term": {
								Type:        genai.TypeString,
								Description: "The field name or section to define.",
							},
						},
						Required: []string{"term"},
					},
				},
			},
		},
	}
}
