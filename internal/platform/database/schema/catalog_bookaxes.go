package schema

// CatalogBookAxesTable represents the 'catalog.bookaxes' table.
//
// Exactly one row per book. The five axis columns are the closed set of
// single-select taxonomy slots every published book must have filled.
type CatalogBookAxesTable struct {
	Table            string
	BookID           string
	WorldFrameworkID string
	PairingID        string
	HeatLevelID      string
	SeriesStatusID   string
	ConsentModeID    string
	UpdatedAt        string
}

// CatalogBookAxes is the schema definition for catalog.bookaxes
var CatalogBookAxes = CatalogBookAxesTable{
	Table:            "catalog.bookaxes",
	BookID:           "bookid",
	WorldFrameworkID: "worldframeworkid",
	PairingID:        "pairingid",
	HeatLevelID:      "heatlevelid",
	SeriesStatusID:   "seriesstatusid",
	ConsentModeID:    "consentmodeid",
	UpdatedAt:        "updatedat",
}

func (t CatalogBookAxesTable) AxisColumns() []string {
	return []string{t.WorldFrameworkID, t.PairingID, t.HeatLevelID, t.SeriesStatusID, t.ConsentModeID}
}
