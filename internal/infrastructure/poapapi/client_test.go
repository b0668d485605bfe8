package poapapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func TestClientScan(t *testing.T) {
	t.Run("parses holdings and sends api key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/actions/scan/"+wallet, r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"tokenId":"101","owner":"` + wallet + `","event":{"id":42,"name":"ETHDenver","image_url":"https://x/42.png","start_date":"24-Feb-2023"}},
				{"tokenId":202,"event":{"id":7,"name":"DevCon","start_date":"2022-10-11"}},
				{"tokenId":"303","event":{}}
			]`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
		records, err := c.Scan(context.Background(), wallet)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "42", records[0].EventID)
		assert.Equal(t, "101", records[0].TokenID)
		assert.Equal(t, wallet, records[0].WalletAddress)
		require.NotNil(t, records[0].EventDate)
		assert.Equal(t, time.February, records[0].EventDate.Month())

		assert.Equal(t, "7", records[1].EventID)
		assert.Equal(t, "202", records[1].TokenID)
		require.NotNil(t, records[1].EventDate)
		assert.Equal(t, 2022, records[1].EventDate.Year())
	})

	t.Run("unknown wallet is empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		records, err := NewClient(Config{BaseURL: srv.URL}).Scan(context.Background(), wallet)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("bad key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewClient(Config{BaseURL: srv.URL}).Scan(context.Background(), wallet)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(Config{BaseURL: srv.URL}).Scan(context.Background(), wallet)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("honors context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := NewClient(Config{BaseURL: srv.URL}).Scan(ctx, wallet)
		assert.Error(t, err)
	})
}
