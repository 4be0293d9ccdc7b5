package schema

// SystemAuditEventTable represents the 'system.auditevent' table
type SystemAuditEventTable struct {
	Table      string
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Payload    string
	CreatedAt  string
}

var SystemAuditEvent = SystemAuditEventTable{
	Table:      "system.auditevent",
	ID:         "id",
	ActorID:    "actorid",
	Action:     "action",
	EntityType: "entitytype",
	EntityID:   "entityid",
	Payload:    "payload",
	CreatedAt:  "createdat",
}
