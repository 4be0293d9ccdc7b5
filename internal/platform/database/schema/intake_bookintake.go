package schema

// IntakeBookIntakeTable represents the 'intake.bookintake' table
type IntakeBookIntakeTable struct {
	Table            string
	ID               string
	SubmittedBy      string
	Title            string
	AuthorName       string
	IdentifierKind   string
	IdentifierValue  string
	SeriesName       string
	SeriesIndex      string
	PublishYear      string
	WorldFrameworkID string
	PairingID        string
	HeatLevelID      string
	SeriesStatusID   string
	ConsentModeID    string
	TagSelections    string
	Notes            string
	State            string
	DecisionNotes    string
	DecidedBy        string
	DecidedAt        string
	CreatedBookID    string
	CreatedAt        string
}

// IntakeBookIntake is the schema definition for intake.bookintake
var IntakeBookIntake = IntakeBookIntakeTable{
	Table:            "intake.bookintake",
	ID:               "id",
	SubmittedBy:      "submittedby",
	Title:            "title",
	AuthorName:       "authorname",
	IdentifierKind:   "identifierkind",
	IdentifierValue:  "identifiervalue",
	SeriesName:       "seriesname",
	SeriesIndex:      "seriesindex",
	PublishYear:      "publishyear",
	WorldFrameworkID: "worldframeworkid",
	PairingID:        "pairingid",
	HeatLevelID:      "heatlevelid",
	SeriesStatusID:   "seriesstatusid",
	ConsentModeID:    "consentmodeid",
	TagSelections:    "tagselections",
	Notes:            "notes",
	State:            "state",
	DecisionNotes:    "decisionnotes",
	DecidedBy:        "decidedby",
	DecidedAt:        "decidedat",
	CreatedBookID:    "createdbookid",
	CreatedAt:        "createdat",
}

func (t IntakeBookIntakeTable) Columns() []string {
	return []string{
		t.ID, t.SubmittedBy, t.Title, t.AuthorName, t.IdentifierKind, t.IdentifierValue,
		t.SeriesName, t.SeriesIndex, t.PublishYear,
		t.WorldFrameworkID, t.PairingID, t.HeatLevelID, t.SeriesStatusID, t.ConsentModeID,
		t.TagSelections, t.Notes, t.State, t.DecisionNotes, t.DecidedBy, t.DecidedAt,
		t.CreatedBookID, t.CreatedAt,
	}
}
