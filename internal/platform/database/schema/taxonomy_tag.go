package schema

// TaxonomyTagTable represents the 'taxonomy.tag' table
type TaxonomyTagTable struct {
	Table            string
	ID               string
	CategoryKey      string
	Name             string
	Slug             string
	ParentTagID      string
	Sensitive        string
	RequiresEvidence string
	Premium          string
	SortOrder        string
	CreatedAt        string
	UpdatedAt        string
}

// TaxonomyTag is the schema definition for taxonomy.tag
var TaxonomyTag = TaxonomyTagTable{
	Table:            "taxonomy.tag",
	ID:               "id",
	CategoryKey:      "categorykey",
	Name:             "name",
	Slug:             "slug",
	ParentTagID:      "parenttagid",
	Sensitive:        "sensitive",
	RequiresEvidence: "requiresevidence",
	Premium:          "premium",
	SortOrder:        "sortorder",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
}

func (t TaxonomyTagTable) Columns() []string {
	return []string{
		t.ID, t.CategoryKey, t.Name, t.Slug, t.ParentTagID, t.Sensitive,
		t.RequiresEvidence, t.Premium, t.SortOrder, t.CreatedAt, t.UpdatedAt,
	}
}
