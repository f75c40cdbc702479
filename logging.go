package mcp

import "encoding/json"

// LogLevel is the ordered RFC 5424-derived severity enum MCP uses for
// logging/setLevel and notifications/message. Severity increases as the
// numeric value decreases: Emergency is the most severe.
type LogLevel int

const (
	LogEmergency LogLevel = iota
	LogAlert
	LogCritical
	LogError
	LogWarning
	LogNotice
	LogInfo
	LogDebug
)

var logLevelNames = [...]string{
	LogEmergency: "emergency",
	LogAlert:     "alert",
	LogCritical:  "critical",
	LogError:     "error",
	LogWarning:   "warning",
	LogNotice:    "notice",
	LogInfo:      "info",
	LogDebug:     "debug",
}

func (l LogLevel) String() string {
	if int(l) < 0 || int(l) >= len(logLevelNames) {
		return "unknown"
	}
	return logLevelNames[l]
}

// MarshalJSON encodes the level as its wire name.
func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes the wire name back into a LogLevel.
func (l *LogLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range logLevelNames {
		if name == s {
			*l = LogLevel(i)
			return nil
		}
	}
	return &ParseError{Reason: "unknown log level: " + s}
}

// SetLevelParams is the params of logging/setLevel.
type SetLevelParams struct {
	Level LogLevel `json:"level"`
}

// LogMessageParams is the params of notifications/message.
type LogMessageParams struct {
	Level  LogLevel        `json:"level"`
	Logger *string         `json:"logger,omitempty"`
	Data   json.RawMessage `json:"data"`
}
