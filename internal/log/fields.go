package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldStorageKey  = "storage_key"
	FieldSessionID   = "session_id"
	FieldBillID      = "bill_id"
	FieldTransaction = "transaction_id"
	FieldAmount      = "amount"
	FieldOrigin      = "origin"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentKV     = "kv"
	ComponentAMQP   = "amqp"
	ComponentWorker = "worker"
	ComponentExport = "export"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpClose     = "close"
	OpToggle    = "toggle"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpExport    = "export"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
