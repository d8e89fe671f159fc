package middlewares

import "context"

// contextKey is an unexported type for keys in context
type contextKey int

const (
	requestIDKey contextKey = iota
	operatorKey
	requestInfoKey
)

// requestInfo carries what inner middlewares learn back out to the access log.
type requestInfo struct {
	operator string
}

// RequestIDFromContext returns the request ID set by LoggingMiddleware, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// OperatorFromContext returns the operator authenticated by AuthMiddleware, or "" if absent.
func OperatorFromContext(ctx context.Context) string {
	operator, _ := ctx.Value(operatorKey).(string)
	return operator
}

func setOperatorToContext(ctx context.Context, operator string) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.operator = operator
	}
	return context.WithValue(ctx, operatorKey, operator)
}
