package logger

import "time"

// Field keys shared by the engine, the sinks and the host.
const (
	FieldComponent  = "component"
	FieldRouteID    = "route_id"
	FieldExchangeID = "exchange_id"
	FieldStage      = "stage"
	FieldStageKind  = "stage_kind"
	FieldState      = "state"
	FieldStatus     = "status"
	FieldURL        = "url"
	FieldErrorCode  = "error_code"
	FieldDuration   = "duration_ms"
	FieldBody       = "body"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are skipped.
//
//	log.Info("route drained", logger.Fields(logger.FieldRouteID, id, "inflight", 0))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// DurationFields reports how long the named component took, in milliseconds.
func DurationFields(name string, d time.Duration) map[string]any {
	return map[string]any{FieldComponent: name, FieldDuration: d.Milliseconds()}
}
