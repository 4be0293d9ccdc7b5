package schema

// CatalogBookIdentifierTable represents the 'catalog.bookidentifier' table
type CatalogBookIdentifierTable struct {
	Table     string
	ID        string
	BookID    string
	Kind      string
	Value     string
	CreatedAt string
}

// CatalogBookIdentifier is the schema definition for catalog.bookidentifier
var CatalogBookIdentifier = CatalogBookIdentifierTable{
	Table:     "catalog.bookidentifier",
	ID:        "id",
	BookID:    "bookid",
	Kind:      "kind",
	Value:     "value",
	CreatedAt: "createdat",
}

func (t CatalogBookIdentifierTable) Columns() []string {
	return []string{t.ID, t.BookID, t.Kind, t.Value, t.CreatedAt}
}
