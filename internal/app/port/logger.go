package port

// Logger is the logging interface shared by application services. The concrete
// implementation adapts the global slog logger.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
