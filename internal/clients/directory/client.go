package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/contacts"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/httpx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

// FullListingPath is the directory route returning every person with their
// contact entries.
const FullListingPath = "/api/people/full"

// maxErrorBody caps how much of an error response is kept for the log.
const maxErrorBody = 512

type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SnapshotFetcher reads the whole directory in one call.
type SnapshotFetcher interface {
	FetchPeople(ctx context.Context) ([]contacts.PersonSnapshot, error)
}

type Client struct {
	log     *logger.Logger
	http    *http.Client
	fullURL string
}

// StatusError is returned for any non-2xx answer, 404 included.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("directory responded %d", e.StatusCode)
	}
	return fmt.Sprintf("directory responded %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

func NewClient(cfg Config, baseLog *logger.Logger) (*Client, error) {
	return NewClientWithHTTP(cfg, httpx.NewClient(cfg.Timeout), baseLog)
}

func NewClientWithHTTP(cfg Config, hc *http.Client, baseLog *logger.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("directory base url required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid directory base url %q", base)
	}
	full, err := u.Parse(FullListingPath)
	if err != nil {
		return nil, fmt.Errorf("build directory url: %w", err)
	}
	if hc == nil {
		hc = httpx.NewClient(cfg.Timeout)
	}
	return &Client{
		log:     baseLog.With("client", "DirectoryClient"),
		http:    hc,
		fullURL: full.String(),
	}, nil
}

// FetchPeople performs a single read. Any failure (transport, status or
// decode) is returned as is; there is no retry here.
func (c *Client) FetchPeople(ctx context.Context) ([]contacts.PersonSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var people []contacts.PersonSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&people); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	if people == nil {
		people = []contacts.PersonSnapshot{}
	}
	c.log.Debug("Directory snapshot fetched", "people", len(people), "duration_ms", time.Since(start).Milliseconds())
	return people, nil
}
