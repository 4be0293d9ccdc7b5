package schema

// CatalogEvidenceLinkTable represents the 'catalog.evidencelink' table.
//
// A link ties an evidence record to either a specific tag (tagid set) or a
// named axis slot (axis set). Exactly one of the two is non-null per row.
type CatalogEvidenceLinkTable struct {
	Table      string
	EvidenceID string
	TagID      string
	Axis       string
}

// CatalogEvidenceLink is the schema definition for catalog.evidencelink
var CatalogEvidenceLink = CatalogEvidenceLinkTable{
	Table:      "catalog.evidencelink",
	EvidenceID: "evidenceid",
	TagID:      "tagid",
	Axis:       "axis",
}
