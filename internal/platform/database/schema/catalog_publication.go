package schema

// CatalogPublicationTable represents the 'catalog.publication' table.
//
// Rows are immutable snapshots; they are inserted by the publication engine
// and never updated or deleted.
type CatalogPublicationTable struct {
	Table                 string
	ID                    string
	BookID                string
	TaxonomyVersionID     string
	PreviousPublicationID string
	Snapshot              string
	Diff                  string
	PublishedBy           string
	CreatedAt             string
}

// CatalogPublication is the schema definition for catalog.publication
var CatalogPublication = CatalogPublicationTable{
	Table:                 "catalog.publication",
	ID:                    "id",
	BookID:                "bookid",
	TaxonomyVersionID:     "taxonomyversionid",
	PreviousPublicationID: "previouspublicationid",
	Snapshot:              "snapshot",
	Diff:                  "diff",
	PublishedBy:           "publishedby",
	CreatedAt:             "createdat",
}

func (t CatalogPublicationTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.TaxonomyVersionID, t.PreviousPublicationID,
		t.Snapshot, t.Diff, t.PublishedBy, t.CreatedAt,
	}
}
