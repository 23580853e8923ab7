package core

// Logger is the application-wide structured logger.
// args may carry errors, maps of extra data or the Person doing the request.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated caller attached to log entries.
type Person struct {
	ID       string
	Username string
	Role     string
}
