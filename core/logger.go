package core

// Logger is the minimal logging contract shared by all layers. The rollbar
// implementation lives in services/logger; tests use a plain std wrapper.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
