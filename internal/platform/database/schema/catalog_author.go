package schema

// CatalogAuthorTable represents the 'catalog.author' table
type CatalogAuthorTable struct {
	Table          string
	ID             string
	Name           string
	NormalizedName string
	Bio            string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// CatalogAuthor is the schema definition for catalog.author
var CatalogAuthor = CatalogAuthorTable{
	Table:          "catalog.author",
	ID:             "id",
	Name:           "name",
	NormalizedName: "normalizedname",
	Bio:            "bio",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}

func (t CatalogAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.NormalizedName, t.Bio, t.CreatedAt, t.UpdatedAt, t.DeletedAt}
}
