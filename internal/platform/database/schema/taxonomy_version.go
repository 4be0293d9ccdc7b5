package schema

// TaxonomyVersionTable represents the 'taxonomy.version' table.
//
// At most one row is active at a time; publications are pinned to the row
// that was active at publish time.
type TaxonomyVersionTable struct {
	Table     string
	ID        string
	Label     string
	Active    string
	CreatedAt string
}

// TaxonomyVersion is the schema definition for taxonomy.version
var TaxonomyVersion = TaxonomyVersionTable{
	Table:     "taxonomy.version",
	ID:        "id",
	Label:     "label",
	Active:    "active",
	CreatedAt: "createdat",
}
