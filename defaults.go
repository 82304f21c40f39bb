package gradebook

import "go.uber.org/zap"

// Interceptor priorities. Lower values run first.
const (
	PriorityRecovery  = 100
	PriorityRequestID = 200
	PriorityTracing   = 300
	PriorityLogging   = 400
	PriorityRateLimit = 500
	PriorityTimeout   = 600
	PriorityCustom    = 1000
)

// DefaultOptions returns panic recovery, request ids and call logging.
func DefaultOptions(log *zap.Logger) []Option {
	return []Option{
		WithRecovery(log),
		WithRequestID(),
		WithLogging(log),
	}
}
