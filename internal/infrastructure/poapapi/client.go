package poapapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/letsconnect/connect-backend/internal/domain"
	"golang.org/x/time/rate"
)

// ErrUnauthorized is returned when the API rejects the configured key.
var ErrUnauthorized = errors.New("poap api rejected credentials")

type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// Client reads wallet holdings from the POAP API. Calls share one rate
// limiter so a burst of feed lookups cannot exhaust the account quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

type scanToken struct {
	TokenID json.RawMessage `json:"tokenId"`
	Owner   string          `json:"owner"`
	Event   struct {
		ID        json.Number `json:"id"`
		Name      string      `json:"name"`
		ImageURL  string      `json:"image_url"`
		StartDate string      `json:"start_date"`
	} `json:"event"`
}

// Scan returns every POAP held by wallet. A wallet the API does not know
// yields an empty slice and no error.
func (c *Client) Scan(ctx context.Context, wallet string) ([]domain.PoapRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("poap rate limit wait: %w", err)
	}

	endpoint := c.baseURL + "/actions/scan/" + url.PathEscape(wallet)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poap request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poap scan request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return []domain.PoapRecord{}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("poap scan returned %d: %s", resp.StatusCode, body)
	}

	var tokens []scanToken
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode poap scan: %w", err)
	}

	records := make([]domain.PoapRecord, 0, len(tokens))
	for _, t := range tokens {
		if t.Event.ID == "" {
			continue
		}
		records = append(records, domain.PoapRecord{
			WalletAddress: wallet,
			EventID:       t.Event.ID.String(),
			TokenID:       rawID(t.TokenID),
			EventName:     t.Event.Name,
			ImageURL:      t.Event.ImageURL,
			EventDate:     parseEventDate(t.Event.StartDate),
		})
	}
	return records, nil
}

// rawID accepts token ids sent either as JSON strings or numbers.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return n.String()
		}
	}
	return ""
}

var eventDateLayouts = []string{"2006-01-02", "02-Jan-2006", time.RFC3339}

func parseEventDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
