package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type record struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  Fields
	Err     error
}

type formatter interface {
	format(r record) string
}

// consoleFormatter renders "2006-01-02 15:04:05 | INFO  | msg | k=v".
type consoleFormatter struct{}

func (consoleFormatter) format(r record) string {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteString(" | ")
	b.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	b.WriteString(" | ")
	b.WriteString(r.Message)

	if len(r.Fields) > 0 {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" | %s=%v", k, r.Fields[k]))
		}
	}
	return b.String()
}

// jsonFormatter renders one JSON object per line.
type jsonFormatter struct{}

func (jsonFormatter) format(r record) string {
	obj := map[string]any{
		"timestamp": r.Time.Format(time.RFC3339Nano),
		"level":     r.Level.String(),
		"message":   r.Message,
	}
	for k, v := range r.Fields {
		obj[k] = v
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"logx: marshal failed: %v"}`, err)
	}
	return string(data)
}
