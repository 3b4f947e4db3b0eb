package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

const (
	defaultUpstashKey    = "crew:appointments"
	maxResponseSizeBytes = 2 << 20
)

var _ contractx.RecordStore = (*UpstashStore)(nil)

type UpstashConfig struct {
	URL     string        `envconfig:"URL" required:"true"`
	Token   string        `envconfig:"TOKEN" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// UpstashOption customizes UpstashStore.
type UpstashOption func(*UpstashStore)

func WithKey(key string) UpstashOption {
	return func(s *UpstashStore) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			s.key = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashStore keeps records as JSON entries of a single Redis list,
// reached through the Upstash REST endpoint.
type UpstashStore struct {
	baseURL    string
	token      string
	key        string
	httpClient *http.Client
	now        func() time.Time
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashStore(cfg UpstashConfig, opts ...UpstashOption) (*UpstashStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &UpstashStore{
		baseURL:    baseURL,
		token:      token,
		key:        defaultUpstashKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Init checks that the endpoint answers.
func (s *UpstashStore) Init(ctx context.Context) error {
	if _, err := s.exec(ctx, []any{"PING"}); err != nil {
		return fmt.Errorf("ping upstash: %w", err)
	}
	return nil
}

func (s *UpstashStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *UpstashStore) Append(ctx context.Context, rec contractx.Record) error {
	payload, err := json.Marshal(stamp(rec, s.now()))
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.exec(ctx, []any{"RPUSH", s.key, string(payload)})
	return err
}

func (s *UpstashStore) Exists(ctx context.Context, timestamp, category string) (bool, error) {
	records, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range records {
		if r.Timestamp == timestamp && r.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func (s *UpstashStore) List(ctx context.Context) ([]contractx.Record, error) {
	resp, err := s.exec(ctx, []any{"LRANGE", s.key, 0, -1})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, nil
	}

	var encoded []string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}

	out := make([]contractx.Record, 0, len(encoded))
	for _, e := range encoded {
		var rec contractx.Record
		if err := json.Unmarshal([]byte(e), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *UpstashStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
