package logger

import (
	"time"
)

// Field keys shared by every package so log queries can join on them.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldToken     = "token"
	FieldScope     = "scope"
	FieldModule    = "module"
	FieldRoute     = "route"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
// A trailing key without a value and non-string keys are dropped.
//
//	log.Info("done", logger.Fields("token", "Logger", "scope", "root"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields describes a timed operation, in milliseconds.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// InstanceFields identifies a value cached in an injector scope. A non-nil
// err is added under FieldError.
func InstanceFields(scope, token string, err error) map[string]interface{} {
	m := map[string]interface{}{
		FieldScope: scope,
		FieldToken: token,
	}
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}

// RouteFields identifies a mounted route as "METHOD /path".
func RouteFields(method, path string) map[string]interface{} {
	return map[string]interface{}{FieldRoute: method + " " + path}
}
