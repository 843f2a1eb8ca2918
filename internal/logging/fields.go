package logging

// Standardized attribute keys.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldRecordID  = "record_id"
	FieldPath      = "path"
)
