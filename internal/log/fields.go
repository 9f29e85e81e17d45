package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldClientID   = "client_id"
	FieldEntryID    = "entry_id"
	FieldMonth      = "month"
	FieldFile       = "file"
	FieldSheet      = "sheet"
	FieldRow        = "row"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentExport   = "export"
	ComponentImporter = "importer"
	ComponentEvents   = "events"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpImport   = "import"
	OpReload   = "reload"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
