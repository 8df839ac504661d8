package logsvc

import (
	"io"
	"log"
	"sync"

	"github.com/masomo/planner/core"
)

// Entry is a message recorded by the mock logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// ConsoleLogger writes to a std log.Logger only; used in DEV and by the admin CLI.
type ConsoleLogger struct {
	std *log.Logger

	record  bool
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	return &ConsoleLogger{std: std}
}

// NewConsoleLoggerMock returns a silent logger recording every entry.
func NewConsoleLoggerMock() *ConsoleLogger {
	return &ConsoleLogger{std: log.New(io.Discard, "", 0), record: true}
}

// Entries returns the recorded entries of the given level ("" for all).
func (l *ConsoleLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

func (l *ConsoleLogger) log(level, msg string, args []interface{}) {
	if l.record {
		l.mu.Lock()
		l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
		l.mu.Unlock()
	}
	l.std.Println(level + ": " + msg)
	for _, arg := range args {
		if m, ok := arg.(map[string]interface{}); arg == nil || (ok && len(m) == 0) {
			continue
		}
		l.std.Printf("%+v\n", arg)
	}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }

func (l *ConsoleLogger) Info(msg string, args ...interface{}) { l.log("INFO", msg, args) }

func (l *ConsoleLogger) Warn(msg string, args ...interface{}) { l.log("WARN", msg, args) }

func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }

func (l *ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.std.Fatal(msg)
}
