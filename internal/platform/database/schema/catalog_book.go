package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table             string
	ID                string
	Title             string
	Slug              string
	Status            string
	Synopsis          string
	SeriesName        string
	SeriesIndex       string
	PublishYear       string
	LivePublicationID string
	FirstPublishedAt  string
	LastPublishedAt   string
	NormalizedTitle   string
	CreatedAt         string
	UpdatedAt         string
	DeletedAt         string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:             "catalog.book",
	ID:                "id",
	Title:             "title",
	Slug:              "slug",
	Status:            "status",
	Synopsis:          "synopsis",
	SeriesName:        "seriesname",
	SeriesIndex:       "seriesindex",
	PublishYear:       "publishyear",
	LivePublicationID: "livepublicationid",
	FirstPublishedAt:  "firstpublishedat",
	LastPublishedAt:   "lastpublishedat",
	NormalizedTitle:   "normalizedtitle",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
	DeletedAt:         "deletedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Status, t.Synopsis, t.SeriesName, t.SeriesIndex,
		t.PublishYear, t.LivePublicationID, t.FirstPublishedAt, t.LastPublishedAt,
		t.NormalizedTitle, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
