package publishers

// Logger is the structured logging surface sinks write delivery results to.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// deliveryFields is the log payload for one item delivery attempt.
func deliveryFields(publisherID string, evt Event, err error) map[string]any {
	fields := map[string]any{
		"publisher_id": publisherID,
		"item_id":      evt.Item.ID,
	}
	if evt.Item.Category != "" {
		fields["category"] = evt.Item.Category
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	return fields
}
