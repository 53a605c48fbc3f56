package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

// DevProvider writes emails to a directory instead of sending them.
// Each message produces an .html (or .txt) body file and a .json metadata file.
type DevProvider struct {
	dir string
}

func newDevFactory(_ context.Context, cfg ProviderConfig) (Provider, error) {
	return NewDevProvider(cfg.Dev.Dir)
}

// NewDevProvider creates dir if needed.
func NewDevProvider(dir string) (*DevProvider, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: dev: directory is required", ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: dev: failed to create directory: %v", ErrInvalidConfig, err)
	}
	return &DevProvider{dir: dir}, nil
}

func (d *DevProvider) Name() string { return string(ProviderDev) }

type devRecord struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	From      string            `json:"from"`
	To        []string          `json:"to"`
	CC        []string          `json:"cc,omitempty"`
	BCC       []string          `json:"bcc,omitempty"`
	ReplyTo   string            `json:"reply_to,omitempty"`
	Subject   string            `json:"subject"`
	Tags      []string          `json:"tags,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Send writes each message to Dir as JSON plus a body file.
func (d *DevProvider) Send(ctx context.Context, messages []Message) ([]Result, error) {
	return failover.Collect(ctx, d.Name(), messages, d.write)
}

func (d *DevProvider) write(_ context.Context, m Message) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	identifier := m.Subject
	if len(m.Tags) > 0 {
		identifier = m.Tags[0]
	}
	base := fmt.Sprintf("%s_%s_%s", now.Format("2006_01_02_150405"), sanitizeFilename(identifier), id[:8])

	body, ext := m.HTML, ".html"
	if body == "" {
		body, ext = m.Text, ".txt"
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+ext), []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write body file: %v", ErrFailedToSendEmail, err)
	}

	record := devRecord{
		ID:        id,
		Timestamp: now.Format(time.RFC3339),
		From:      m.From,
		To:        m.To,
		CC:        m.CC,
		BCC:       m.BCC,
		ReplyTo:   m.ReplyTo,
		Subject:   m.Subject,
		Tags:      m.Tags,
		Headers:   m.Headers,
		Metadata:  m.Metadata,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write metadata file: %v", ErrFailedToSendEmail, err)
	}
	return id, nil
}

// Health checks that the output directory is still writable.
func (d *DevProvider) Health(context.Context) (failover.HealthInfo, error) {
	f, err := os.CreateTemp(d.dir, ".health-*")
	if err != nil {
		return failover.HealthInfo{}, err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return failover.HealthInfo{OK: true, Message: "directory writable", Details: map[string]any{"dir": d.dir}}, nil
}

// sanitizeRegex matches characters that are not alphanumeric, dash, underscore, or dot.
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename lowercases s, replaces spaces and drops unsafe characters.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
