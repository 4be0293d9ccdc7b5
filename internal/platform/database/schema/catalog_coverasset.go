package schema

// CatalogCoverAssetTable represents the 'catalog.coverasset' table
type CatalogCoverAssetTable struct {
	Table     string
	ID        string
	BookID    string
	Version   string
	State     string
	ImageURL  string
	CreatedAt string
}

// CatalogCoverAsset is the schema definition for catalog.coverasset
var CatalogCoverAsset = CatalogCoverAssetTable{
	Table:     "catalog.coverasset",
	ID:        "id",
	BookID:    "bookid",
	Version:   "version",
	State:     "state",
	ImageURL:  "imageurl",
	CreatedAt: "createdat",
}
