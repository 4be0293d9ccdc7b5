package schema

// CatalogStandoutQuoteTable represents the 'catalog.standoutquote' table
type CatalogStandoutQuoteTable struct {
	Table     string
	ID        string
	BookID    string
	Quote     string
	SortOrder string
	CreatedAt string
}

// CatalogStandoutQuote is the schema definition for catalog.standoutquote
var CatalogStandoutQuote = CatalogStandoutQuoteTable{
	Table:     "catalog.standoutquote",
	ID:        "id",
	BookID:    "bookid",
	Quote:     "quote",
	SortOrder: "sortorder",
	CreatedAt: "createdat",
}
