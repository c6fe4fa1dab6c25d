package connect

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Notifier delivers the single user-facing notification each terminal
// operation outcome produces. The application wires this to its toast
// or banner layer; the default just logs.
type Notifier interface {
	Success(message string, args ...any)
	Info(message string, args ...any)
	Failure(message string, args ...any)
}

// Result is the outcome every public connection operation returns.
// Operations never panic and never surface raw errors to callers.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Ok returns a successful result.
func Ok() Result {
	return Result{Success: true}
}

// Fail returns a failed result with the given human-readable reason.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// ProfileStore is the user-profile collaborator the connection manager
// persists through. CurrentUser returns (nil, nil) when no session is
// active; that is an expected state, not an error. SaveConnection
// replaces the user's Connection sub-record whole — last writer wins.
type ProfileStore interface {
	CurrentUser(ctx context.Context) (*User, error)
	SaveConnection(ctx context.Context, userID string, conn *Connection) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONNECT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONNECT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONNECT "+newline(format), args...)
}

// DefaultLogger returns the stdout logger used when none is provided.
func DefaultLogger() Logger {
	return defLogger{}
}

type logNotifier struct {
	logger Logger
}

// NewLogNotifier returns a Notifier that forwards notifications to a
// logger. Used as the default when the application has no UI layer.
func NewLogNotifier(logger Logger) Notifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Success(message string, args ...any) {
	n.logger.Info("[notify] "+message, args...)
}

func (n *logNotifier) Info(message string, args ...any) {
	n.logger.Info("[notify] "+message, args...)
}

func (n *logNotifier) Failure(message string, args ...any) {
	n.logger.Error("[notify] "+message, args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
