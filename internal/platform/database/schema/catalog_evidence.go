package schema

// CatalogEvidenceTable represents the 'catalog.evidence' table
type CatalogEvidenceTable struct {
	Table          string
	ID             string
	BookID         string
	Kind           string
	Body           string
	Chapter        string
	Page           string
	KindleLocation string
	Note           string
	CreatedBy      string
	CreatedAt      string
}

// CatalogEvidence is the schema definition for catalog.evidence
var CatalogEvidence = CatalogEvidenceTable{
	Table:          "catalog.evidence",
	ID:             "id",
	BookID:         "bookid",
	Kind:           "kind",
	Body:           "body",
	Chapter:        "chapter",
	Page:           "page",
	KindleLocation: "kindlelocation",
	Note:           "note",
	CreatedBy:      "createdby",
	CreatedAt:      "createdat",
}

func (t CatalogEvidenceTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Kind, t.Body, t.Chapter, t.Page,
		t.KindleLocation, t.Note, t.CreatedBy, t.CreatedAt,
	}
}
