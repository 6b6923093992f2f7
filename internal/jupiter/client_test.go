package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
)

func TestClient_Quote_SendsExactOutParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"inputMint":"So11111111111111111111111111111111111111112","outAmount":"5000000"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
	quote, err := c.Quote(context.Background(), QuoteParams{
		InputMint:   "So11111111111111111111111111111111111111112",
		OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:      5_000_000,
		SlippageBps: 50,
	})
	require.NoError(t, err)
	assert.True(t, json.Valid(quote))

	assert.Equal(t, "So11111111111111111111111111111111111111112", gotQuery["inputMint"])
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", gotQuery["outputMint"])
	assert.Equal(t, "5000000", gotQuery["amount"])
	assert.Equal(t, "50", gotQuery["slippageBps"])
	assert.Equal(t, "ExactOut", gotQuery["swapMode"])
	assert.Equal(t, "true", gotQuery["restrictIntermediateTokens"])
}

func TestClient_Quote_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
	_, err := c.Quote(context.Background(), QuoteParams{Amount: 1, SlippageBps: 50})
	assert.ErrorIs(t, err, domainErrors.ErrQuoteUnavailable)
}

func TestClient_Quote_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
	_, err := c.Quote(context.Background(), QuoteParams{Amount: 1})
	assert.ErrorIs(t, err, domainErrors.ErrQuoteUnavailable)
}

func TestClient_Quote_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
	for i := 0; i < 20; i++ {
		_, err := c.Quote(context.Background(), QuoteParams{Amount: 1})
		require.ErrorIs(t, err, domainErrors.ErrQuoteUnavailable)
	}
	// Breaker is open by now: calls fail fast without reaching the server.
	_, err := c.Quote(context.Background(), QuoteParams{Amount: 1})
	assert.ErrorIs(t, err, domainErrors.ErrQuoteUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
}

func TestClient_BuildSwap(t *testing.T) {
	var gotBody SwapRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"swapTransaction": "AAECAwQ="})
	}))
	defer srv.Close()

	c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
	quote := json.RawMessage(`{"outAmount":"5000000"}`)
	tx, err := c.BuildSwap(context.Background(), quote, "user-key", "dest-ata")
	require.NoError(t, err)
	assert.Equal(t, "AAECAwQ=", tx)

	assert.JSONEq(t, string(quote), string(gotBody.QuoteResponse))
	assert.Equal(t, "user-key", gotBody.UserPublicKey)
	assert.Equal(t, "dest-ata", gotBody.DestinationTokenAccount)
}

func TestClient_BuildSwap_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}},
		{"empty transaction", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{QuoteURL: srv.URL, SwapURL: srv.URL})
			_, err := c.BuildSwap(context.Background(), json.RawMessage(`{}`), "u", "d")
			assert.ErrorIs(t, err, domainErrors.ErrSwapConstructionFailed)
		})
	}
}
