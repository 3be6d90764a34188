package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventFetch    EventType = "fetch"
	EventRoster   EventType = "roster"
	EventMerge    EventType = "merge"
	EventSchedule EventType = "schedule"
	EventSchool   EventType = "school"
	EventRematch  EventType = "rematch"
	EventExport   EventType = "export"
	EventConflict EventType = "conflict"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the pipeline
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	Player     string            `json:"player,omitempty"`
	Team       string            `json:"team,omitempty"`
	School     string            `json:"school,omitempty"`
	MatchID    string            `json:"match_id,omitempty"`
	Source     string            `json:"source,omitempty"`
	URL        string            `json:"url,omitempty"`
	Path       string            `json:"path,omitempty"`
	Status     string            `json:"status,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Records    int               `json:"records,omitempty"`
	Duration   int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Open file for writing
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogFetch logs a page fetch event
func (l *EventLogger) LogFetch(source, url string, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventFetch,
		Source:   source,
		URL:      url,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogRosterPage logs a parsed roster page
func (l *EventLogger) LogRosterPage(team, source string, records int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventRoster,
		Team:    team,
		Source:  source,
		Records: records,
	})
}

// LogPlayerMerge logs the outcome of reconciling one player observation
func (l *EventLogger) LogPlayerMerge(player, team, source string, created bool, adopted []string) error {
	level := LevelDebug
	if created || len(adopted) > 0 {
		level = LevelInfo
	}

	return l.Log(&Event{
		Level:  level,
		Event:  EventMerge,
		Player: player,
		Team:   team,
		Source: source,
		Extra: map[string]string{
			"created": fmt.Sprintf("%t", created),
			"adopted": strings.Join(adopted, ","),
		},
	})
}

// LogScheduleMerge logs the outcome of reconciling one match observation
func (l *EventLogger) LogScheduleMerge(matchID, source string, created bool) error {
	level := LevelDebug
	if created {
		level = LevelInfo
	}

	return l.Log(&Event{
		Level:   level,
		Event:   EventSchedule,
		MatchID: matchID,
		Source:  source,
		Extra: map[string]string{
			"created": fmt.Sprintf("%t", created),
		},
	})
}

// LogSchoolMatch logs a high-school name match decision
func (l *EventLogger) LogSchoolMatch(school, status string, confidence float64, created bool) error {
	level := LevelInfo
	if status == "ambiguous" {
		level = LevelWarning
	}

	return l.Log(&Event{
		Level:      level,
		Event:      EventSchool,
		School:     school,
		Status:     status,
		Confidence: confidence,
		Extra: map[string]string{
			"created": fmt.Sprintf("%t", created),
		},
	})
}

// LogRematch logs a status transition from a rematch pass
func (l *EventLogger) LogRematch(school, from, to string, confidence float64) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventRematch,
		School:     school,
		Status:     to,
		Confidence: confidence,
		Extra: map[string]string{
			"previous": from,
		},
	})
}

// LogExport logs a snapshot export
func (l *EventLogger) LogExport(format, path string, records int) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventExport,
		Path:    path,
		Records: records,
		Extra: map[string]string{
			"format": format,
		},
	})
}

// LogConflict logs an observation that was rejected during reconciliation
func (l *EventLogger) LogConflict(player, team, reason string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventConflict,
		Player: player,
		Team:   team,
		Reason: reason,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, url string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		URL:   url,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
