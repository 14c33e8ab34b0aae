package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

var (
	ErrNotConfigured     = errors.New("fulfillment api is not configured")
	ErrEmptyPack         = errors.New("pack needs at least one supplement")
	ErrInvalidSupplement = errors.New("supplement name and handle are required")
)

type Supplement struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

type CustomerInfo struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type PackRequest struct {
	Supplements  []Supplement `json:"supplements"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
}

type LineItemProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type LineItem struct {
	Title      string             `json:"title"`
	Quantity   int                `json:"quantity"`
	Properties []LineItemProperty `json:"properties,omitempty"`
}

type Order struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	LineItems []LineItem `json:"lineItems,omitempty"`
}

// Envelope is the upstream answer as received. StatusCode is filled in by the
// client; everything else comes from the response body.
type Envelope struct {
	Success    bool   `json:"success"`
	Order      *Order `json:"order,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode"`
}

func DefaultSupplements() []Supplement {
	return []Supplement{
		{Name: "Vitamin D3", Handle: "vitamin-d3"},
		{Name: "Omega-3", Handle: "omega-3"},
		{Name: "Magnesium", Handle: "magnesium"},
		{Name: "Vitamin B12", Handle: "vitamin-b12"},
		{Name: "Probiotic", Handle: "probiotic"},
		{Name: "Zinc", Handle: "zinc"},
	}
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config Config, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        strings.TrimSpace(config.URL),
		apiKey:     strings.TrimSpace(config.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (client *Client) Configured() bool {
	return client != nil && client.url != ""
}

// CreateCustomPack forwards the pack to the fulfillment platform. Upstream
// rejections come back as an unsuccessful Envelope; only transport and
// decoding failures are returned as errors.
func (client *Client) CreateCustomPack(ctx context.Context, request PackRequest) (Envelope, error) {
	if !client.Configured() {
		return Envelope{}, ErrNotConfigured
	}
	if len(request.Supplements) == 0 {
		return Envelope{}, ErrEmptyPack
	}
	for _, supplement := range request.Supplements {
		if strings.TrimSpace(supplement.Name) == "" || strings.TrimSpace(supplement.Handle) == "" {
			return Envelope{}, ErrInvalidSupplement
		}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode pack request: %w", err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, client.url, bytes.NewReader(body))
	if err != nil {
		return Envelope{}, fmt.Errorf("build pack request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	started := time.Now()
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return Envelope{}, fmt.Errorf("call fulfillment api: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return Envelope{}, fmt.Errorf("read fulfillment response: %w", err)
	}
	client.logger.Info("fulfillment pack request finished",
		zap.Int("status", response.StatusCode),
		zap.Int("supplements", len(request.Supplements)),
		zap.Duration("elapsed", time.Since(started)),
	)

	envelope := Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			if response.StatusCode < http.StatusBadRequest {
				return Envelope{}, fmt.Errorf("decode fulfillment response: %w", err)
			}
			envelope.Error = strings.TrimSpace(string(raw))
		}
	}
	envelope.StatusCode = response.StatusCode
	if response.StatusCode >= http.StatusBadRequest {
		envelope.Success = false
		if envelope.Error == "" {
			envelope.Error = http.StatusText(response.StatusCode)
		}
	}
	return envelope, nil
}
