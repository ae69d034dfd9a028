// Package logging configures logrus for command-line use.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// MessageFormatter prints only the message (and fields, if any), one entry
// per line. Warnings and errors are colored when UseColors is set.
type MessageFormatter struct {
	UseColors bool
}

var colorTable = map[logrus.Level]*color.Color{
	logrus.TraceLevel: color.New(color.FgHiBlack),
	logrus.DebugLevel: color.New(color.FgCyan),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgMagenta),
	logrus.PanicLevel: color.New(color.FgMagenta),
}

func (f *MessageFormatter) colorize(level logrus.Level, msg string) string {
	if !f.UseColors {
		return msg
	}
	c, ok := colorTable[level]
	if !ok {
		return msg
	}
	return c.Sprint(msg)
}

// Format implements logrus.Formatter.
func (f *MessageFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := &bytes.Buffer{}
	buffer.WriteString(f.colorize(entry.Level, entry.Message))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buffer.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				buffer.WriteByte(' ')
			}
			fmt.Fprintf(buffer, "%s=%v", k, entry.Data[k])
		}
		buffer.WriteByte(']')
	}

	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

// ParseLevel maps a settings level name (case insensitive) to a logrus level.
// "off" and "none" report ok=false.
func ParseLevel(name string) (level logrus.Level, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return logrus.TraceLevel, true, nil
	case "debug":
		return logrus.DebugLevel, true, nil
	case "", "info":
		return logrus.InfoLevel, true, nil
	case "warn", "warning":
		return logrus.WarnLevel, true, nil
	case "error":
		return logrus.ErrorLevel, true, nil
	case "off", "none":
		return logrus.PanicLevel, false, nil
	default:
		return logrus.InfoLevel, false, fmt.Errorf("unknown log level %q", name)
	}
}

// Setup points the standard logrus logger at out with the given level.
// Level "off" discards all output.
func Setup(level string, out io.Writer, useColors bool) error {
	lvl, enabled, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if !enabled {
		logrus.SetOutput(io.Discard)
		return nil
	}

	logrus.SetOutput(out)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&MessageFormatter{UseColors: useColors})
	return nil
}
