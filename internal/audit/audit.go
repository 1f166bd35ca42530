package audit

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/PolarWolf314/stand/internal/utils"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry is one audit log line. It names what changed, never a value.
type Entry struct {
	Timestamp   string `json:"ts"`
	User        string `json:"user"`
	Host        string `json:"host,omitempty"`
	Operation   string `json:"op"`
	Project     string `json:"project,omitempty"`
	Environment string `json:"env,omitempty"`
	Variable    string `json:"var,omitempty"`
	Encrypted   bool   `json:"encrypted,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Trail appends entries to a JSON Lines file. A Trail with an empty path
// discards everything.
type Trail struct {
	path string
}

// New returns a Trail writing to path.
func New(path string) *Trail {
	return &Trail{path: path}
}

// Discard is a Trail that records nothing.
var Discard = &Trail{}

// Path returns the log file location, or "" for a discarding Trail.
func (t *Trail) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// NewEntry returns an entry for op with the current user and host filled in.
func NewEntry(op string) Entry {
	entry := Entry{Operation: op}
	if user, err := utils.GetUsername(); err == nil {
		entry.User = user
	}
	if host, err := utils.GetHostname(); err == nil {
		entry.Host = host
	}
	return entry
}

// Log appends entry. Failures are returned but callers treat them as
// warnings; an operation never fails because auditing did.
func (t *Trail) Log(entry Entry) error {
	if t.Path() == "" {
		return nil
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	logger := zerolog.New(f)
	event := logger.Log().
		Str("ts", entry.Timestamp).
		Str("user", entry.User).
		Str("op", entry.Operation)
	if entry.Host != "" {
		event = event.Str("host", entry.Host)
	}
	if entry.Project != "" {
		event = event.Str("project", entry.Project)
	}
	if entry.Environment != "" {
		event = event.Str("env", entry.Environment)
	}
	if entry.Variable != "" {
		event = event.Str("var", entry.Variable)
	}
	if entry.Encrypted {
		event = event.Bool("encrypted", true)
	}
	if entry.Count != 0 {
		event = event.Int("count", entry.Count)
	}
	event.Send()
	return nil
}

// ReadEntries reads every entry from the log. A missing log is empty.
func (t *Trail) ReadEntries() ([]Entry, error) {
	if t.Path() == "" {
		return nil, nil
	}
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data. Malformed lines, such as a write cut
// short, are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0
	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] != '\n' {
			continue
		}
		line := data[start:i]
		start = i + 1
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
