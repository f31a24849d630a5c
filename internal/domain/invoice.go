package domain

import "encoding/json"

// Party is one side of an invoice (sender or recipient).
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// LineItem is a single billed row on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    json.RawMessage `json:"quantity,omitempty"`
	Rate        json.RawMessage `json:"rate,omitempty"`
	Subtotal    json.RawMessage `json:"subtotal,omitempty"`
}

// BankDetails holds the payment destination printed on an invoice.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	BSB           string `json:"bsb"`
}

// Invoice is the typed form of the structured extraction schema. Numeric
// fields stay as raw JSON because models return them inconsistently as
// strings or numbers.
type Invoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	From          Party           `json:"from"`
	To            Party           `json:"to"`
	Items         []LineItem      `json:"items"`
	Tax           json.RawMessage `json:"tax,omitempty"`
	Total         json.RawMessage `json:"total,omitempty"`
	BankDetails   BankDetails     `json:"bank_details"`
}

// DecodeInvoice attempts a typed decode of a parsed extraction. It only
// succeeds for the parsed variant; fallback and error variants carry no
// structured fields.
func DecodeInvoice(e StructuredExtraction) (*Invoice, bool) {
	if e.Kind != ExtractionParsed || len(e.Fields) == 0 {
		return nil, false
	}
	var inv Invoice
	if err := json.Unmarshal(e.Fields, &inv); err != nil {
		return nil, false
	}
	return &inv, true
}
