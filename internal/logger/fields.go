package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a call chain.
const (
	// FieldRequestID is the console HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component name (api, observer, gateway, cli)
	FieldComponent = "component"

	// FieldAction is the operator action being executed (start, sample, aspects, test_batch)
	FieldAction = "action"

	// FieldSessionID identifies one observer activation
	FieldSessionID = "session_id"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldPollSeq is the sequence number of a status poll
	FieldPollSeq = "poll_seq"

	// FieldStatus is the HTTP or operation status
	FieldStatus = "status"

	// FieldSize is the response size in bytes
	FieldSize = "size"

	// FieldCount is a generic count field
	FieldCount = "count"
)
