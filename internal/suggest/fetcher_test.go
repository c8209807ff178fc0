package suggest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryURL(t *testing.T) {
	assert.Equal(t, "https://example.com/s?q=cats+%26+dogs",
		QueryURL("https://example.com/s?q={}", "cats & dogs"))
	assert.Equal(t, "https://example.com/s?q=caf%C3%A9",
		QueryURL("https://example.com/s?q=", "café"))
}

func TestHTTPFetcherOpenSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cats & dogs", r.URL.Query().Get("q"))
		assert.Equal(t, "qlaunch-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/x-suggestions+json; charset=utf-8")
		fmt.Fprint(w, `["cats & dogs",["cats & dogs movie","cats & dogs 2"]]`)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetcherOptions{UserAgent: "qlaunch-test", Client: srv.Client()})
	items, err := f.Fetch(context.Background(), types.QueryRequest{
		Query:    srv.URL + "/complete?q={}",
		Argument: "cats & dogs",
		Format:   types.FormatOpenSearch,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cats & dogs movie", "cats & dogs 2"}, items)
}

func TestHTTPFetcherDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=ISO-8859-1")
		// "café" in latin-1
		w.Write([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><toplevel>` +
			`<CompleteSuggestion><suggestion data="caf` + "\xe9" + `"/></CompleteSuggestion>` +
			`<CompleteSuggestion><suggestion data="cafe racer"/></CompleteSuggestion></toplevel>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetcherOptions{Client: srv.Client()})
	items, err := f.Fetch(context.Background(), types.QueryRequest{
		Query:    srv.URL + "/?q=",
		Argument: "caf",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"café", "cafe racer"}, items)
}

func TestHTTPFetcherErrors(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := NewHTTPFetcher(FetcherOptions{Client: srv.Client()})
		_, err := f.Fetch(context.Background(), types.QueryRequest{Query: srv.URL + "/?q="})
		assert.ErrorContains(t, err, "503")
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		f := NewHTTPFetcher(FetcherOptions{Client: srv.Client(), Timeout: 50 * time.Millisecond})
		start := time.Now()
		_, err := f.Fetch(context.Background(), types.QueryRequest{Query: srv.URL + "/?q="})
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Cancelled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := NewHTTPFetcher(FetcherOptions{Client: srv.Client()})
		_, err := f.Fetch(ctx, types.QueryRequest{Query: srv.URL + "/?q="})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPFetcherBodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "one\ntwo\nthree\nfour\n")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetcherOptions{Client: srv.Client(), MaxBodyBytes: 8})
	items, err := f.Fetch(context.Background(), types.QueryRequest{
		Query:  srv.URL + "/?q=",
		Format: types.FormatLines,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, items)
}
