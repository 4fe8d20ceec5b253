package services

import (
	"sort"
	"strings"
)

// invoiceKnowledgeBase holds definitions of the fields found on an invoice,
// keyed by dotted path.
var invoiceKnowledgeBase = map[string]string{
	"invoice_number":            "A unique identifier assigned to each invoice for tracking and reference purposes.",
	"order_number":              "A unique identifier assigned to the customer's order.",
	"order_date":                "The date when the order was placed by the customer.",
	"invoice_date":              "The date when the invoice was generated.",
	"seller.name":               "The name of the business selling the product or service.",
	"seller.pan_number":         "The seller's Permanent Account Number (PAN) for tax purposes.",
	"seller.gst_number":         "The seller's Goods and Services Tax (GST) number.",
	"seller.address":            "The physical address of the seller.",
	"billing_address":           "The address provided by the customer for billing purposes.",
	"shipping_address":          "The address where the goods are to be delivered.",
	"place_of_supply":           "The state or union territory where the goods are supplied.",
	"item_details.description":  "The description of the item purchased.",
	"item_details.code_number":  "The code number (HSN) associated with the item.",
	"item_details.hsn_number":   "HSN stands for Harmonized System of Nomenclature, a globally standardized system of names and numbers used to classify traded products.",
	"item_details.unit_price":   "The price per unit of the item.",
	"item_details.quantity":     "The number of units purchased.",
	"item_details.total_price":  "The total cost of the item before taxes.",
	"item_details.tax_rate":     "The percentage of tax applied.",
	"item_details.tax_amount":   "The amount of tax charged on the item.",
	"item_details.final_amount": "The final amount payable for the item including tax.",
	"shipping_charges":          "The cost of shipping the item, after any discounts.",
	"reverse_charge":            "Indicates whether tax is payable under reverse charge.",
	"amount_in_words":           "The total amount due, expressed in words.",
}

// LookupInvoiceTerm finds the definition of an invoice field. The term may be
// a full key ("seller.gst_number"), a leaf ("gst number") or a section
// ("seller"), in which case every field of the section is returned.
func LookupInvoiceTerm(term string) (map[string]string, bool) {
	key := normalizeTerm(term)
	if key == "" {
		return nil, false
	}

	if def, ok := invoiceKnowledgeBase[key]; ok {
		return map[string]string{key: def}, true
	}

	found := make(map[string]string)
	for k, def := range invoiceKnowledgeBase {
		section, leaf, nested := strings.Cut(k, ".")
		if (nested && leaf == key) || section == key {
			found[k] = def
		}
	}
	// Common spellings like "gst" or "pan" match the *_number fields.
	if len(found) == 0 {
		for k, def := range invoiceKnowledgeBase {
			_, leaf, nested := strings.Cut(k, ".")
			if !nested {
				leaf = k
			}
			if leaf == key+"_number" {
				found[k] = def
			}
		}
	}
	return found, len(found) > 0
}

// InvoiceTerms lists every key of the knowledge base in order.
func InvoiceTerms() []string {
	terms := make([]string, 0, len(invoiceKnowledgeBase))
	for k := range invoiceKnowledgeBase {
		terms = append(terms, k)
	}
	sort.Strings(terms)
	return terms
}

func normalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	term = strings.NewReplacer(" ", "_", "-", "_").Replace(term)
	return strings.Trim(term, "_.")
}
