// Package jupiter implements clients for the external quote and
// swap-construction services.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
)

const maxResponseBody = 4 << 20

// QuoteParams describe an ExactOut conversion: the output amount is exact
// (the merchant receives precisely that much of the reference asset) and
// the input amount floats with the market, bounded by slippage.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // output amount in the reference asset's base units
	SlippageBps int
}

// SwapRequest is the payload for the swap-construction service.
type SwapRequest struct {
	QuoteResponse           json.RawMessage `json:"quoteResponse"`
	UserPublicKey           string          `json:"userPublicKey"`
	DestinationTokenAccount string          `json:"destinationTokenAccount"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// Config holds the client's endpoints and limits.
type Config struct {
	QuoteURL string
	SwapURL  string
	Timeout  time.Duration
}

// Client calls the quote and swap services. Each upstream call is bounded
// by the configured timeout and guarded by its own circuit breaker;
// failures surface immediately, there are no request-path retries.
type Client struct {
	cfg          Config
	http         *http.Client
	quoteBreaker *gobreaker.CircuitBreaker[json.RawMessage]
	swapBreaker  *gobreaker.CircuitBreaker[string]
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:          cfg,
		http:         &http.Client{Timeout: cfg.Timeout},
		quoteBreaker: newBreaker[json.RawMessage]("jupiter-quote"),
		swapBreaker:  newBreaker[string]("jupiter-swap"),
	}
}

func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
}

// Quote fetches an ExactOut quote. The response body is kept as raw JSON
// and handed to BuildSwap untouched: quotes expire within seconds and are
// never cached or reissued.
func (c *Client) Quote(ctx context.Context, p QuoteParams) (json.RawMessage, error) {
	quote, err := c.quoteBreaker.Execute(func() (json.RawMessage, error) {
		return c.fetchQuote(ctx, p)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", domainErrors.ErrQuoteUnavailable)
		}
		return nil, err
	}
	return quote, nil
}

func (c *Client) fetchQuote(ctx context.Context, p QuoteParams) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("inputMint", p.InputMint)
	q.Set("outputMint", p.OutputMint)
	q.Set("amount", strconv.FormatUint(p.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(p.SlippageBps))
	q.Set("restrictIntermediateTokens", "true")
	q.Set("swapMode", "ExactOut")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.QuoteURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrQuoteUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domainErrors.ErrQuoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domainErrors.ErrQuoteUnavailable, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed body", domainErrors.ErrQuoteUnavailable)
	}
	return json.RawMessage(body), nil
}

// BuildSwap asks the swap-construction service for an unsigned serialized
// transaction paying out to destinationTokenAccount.
func (c *Client) BuildSwap(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error) {
	tx, err := c.swapBreaker.Execute(func() (string, error) {
		return c.fetchSwap(ctx, quote, userPublicKey, destinationTokenAccount)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: circuit open", domainErrors.ErrSwapConstructionFailed)
		}
		return "", err
	}
	return tx, nil
}

func (c *Client) fetchSwap(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error) {
	payload, err := json.Marshal(SwapRequest{
		QuoteResponse:           quote,
		UserPublicKey:           userPublicKey,
		DestinationTokenAccount: destinationTokenAccount,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domainErrors.ErrSwapConstructionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SwapURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrSwapConstructionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrSwapConstructionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domainErrors.ErrSwapConstructionFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domainErrors.ErrSwapConstructionFailed, resp.StatusCode)
	}

	var out swapResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: malformed body: %v", domainErrors.ErrSwapConstructionFailed, err)
	}
	if out.SwapTransaction == "" {
		return "", fmt.Errorf("%w: empty swapTransaction", domainErrors.ErrSwapConstructionFailed)
	}
	return out.SwapTransaction, nil
}
