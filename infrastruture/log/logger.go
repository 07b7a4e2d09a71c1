// Package log is the coloured levelled logger used across the service.
package log

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"sync"
)

const colorReset = "\033[0m"

// Level colours.
const (
	infoColor    = "\033[32m"
	warningColor = "\033[33m"
	errorColor   = "\033[31m"
)

// Logger prefixes every line with a coloured component name and level.
type Logger struct {
	mu     sync.Mutex
	prefix string
	color  string
	out    *stdlog.Logger
}

// New returns a Logger writing to w. color is an ANSI escape used for the prefix.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, errors.New("logger needs a writer")
	}
	if prefix == "" {
		return nil, errors.New("logger needs a prefix")
	}

	return &Logger{
		prefix: prefix,
		color:  color,
		out:    stdlog.New(w, "", stdlog.LstdFlags),
	}, nil
}

func (l *Logger) Info(msg string) { l.print(infoColor, "INFO", msg) }
func (l *Logger) Warning(msg string) { l.print(warningColor, "WARN", msg) }
func (l *Logger) Error(msg string) { l.print(errorColor, "ERROR", msg) }

func (l *Logger) print(levelColor, level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Print(fmt.Sprintf("%s[%s]%s %s[%s]%s %s", l.color, l.prefix, colorReset, levelColor, level, colorReset, msg))
}
