package models

// DocumentType identifies the upload formats the pipeline accepts
type DocumentType string

const (
	DocumentTypePDF DocumentType = "pdf"
	DocumentTypeTXT DocumentType = "txt"
)

// Field is a single extracted invoice attribute together with the model's
// self-reported confidence and the evidence it relied on.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// InvoiceRecord is the fixed field schema produced by structured extraction.
// A nil field means the model could not find it in the document; values are
// never invented to fill gaps.
type InvoiceRecord struct {
	Vendor        *Field `json:"vendor,omitempty"`
	InvoiceNumber *Field `json:"invoice_number,omitempty"`
	InvoiceDate   *Field `json:"invoice_date,omitempty"` // YYYY-MM-DD
	DueDate       *Field `json:"due_date,omitempty"`     // YYYY-MM-DD
	TotalAmount   *Field `json:"total_amount,omitempty"` // decimal string, no currency symbols
}

// NamedField pairs a schema field name with its extracted value.
type NamedField struct {
	Name  string
	Field *Field
}

// Fields returns the record's attributes in display order. Absent fields are
// included with a nil Field so callers can distinguish "not found".
func (r *InvoiceRecord) Fields() []NamedField {
	if r == nil {
		return nil
	}
	return []NamedField{
		{Name: "vendor", Field: r.Vendor},
		{Name: "invoice_number", Field: r.InvoiceNumber},
		{Name: "invoice_date", Field: r.InvoiceDate},
		{Name: "due_date", Field: r.DueDate},
		{Name: "total_amount", Field: r.TotalAmount},
	}
}

// ExtractionResult bundles the structured record with the request-scoped
// commentary the model produced alongside it.
type ExtractionResult struct {
	Record  *InvoiceRecord `json:"record"`
	Summary string         `json:"summary,omitempty"`
	Answer  string         `json:"answer,omitempty"`
}
