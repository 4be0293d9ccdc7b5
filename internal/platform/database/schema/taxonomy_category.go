package schema

// TaxonomyCategoryTable represents the 'taxonomy.category' table
type TaxonomyCategoryTable struct {
	Table        string
	Key          string
	Label        string
	SingleSelect string
	Premium      string
	SortOrder    string
}

// TaxonomyCategory is the schema definition for taxonomy.category
var TaxonomyCategory = TaxonomyCategoryTable{
	Table:        "taxonomy.category",
	Key:          "key",
	Label:        "label",
	SingleSelect: "singleselect",
	Premium:      "premium",
	SortOrder:    "sortorder",
}

func (t TaxonomyCategoryTable) Columns() []string {
	return []string{t.Key, t.Label, t.SingleSelect, t.Premium, t.SortOrder}
}
