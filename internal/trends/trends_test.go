package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trendsPage = `<!DOCTYPE html>
<html><body>
<div class="feed-item">
  <div class="feed-item-title"> Ozempic </div>
  <div class="feed-item-stats">500K+ searches</div>
  <a href="/trends/explore?q=ozempic">Explore</a>
</div>
<div class="feed-item">
  <div class="feed-item-title">Flu season</div>
  <a href="https://example.com/flu">Explore</a>
</div>
<div class="feed-item">
  <div class="feed-item-title"></div>
</div>
</body></html>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trendsPage))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	items, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "the item with no title is skipped")

	assert.Equal(t, "Ozempic", items[0].Name)
	assert.Equal(t, "500K+ searches", items[0].Stat)
	assert.Equal(t, "https://trends.google.com/trends/explore?q=ozempic", items[0].Link, "relative links are made absolute")

	assert.Equal(t, "Flu season", items[1].Name)
	assert.Equal(t, "N/A", items[1].Stat, "missing stats fall back to N/A")
	assert.Equal(t, "https://example.com/flu", items[1].Link)
}

func TestFetch_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetch_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down immediately

	client := NewClient(srv.URL)
	_, err := client.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	items, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFilter(t *testing.T) {
	items := []Trend{
		{Name: "Ozempic"},
		{Name: "Flu season"},
		{Name: "ozempic shortage"},
	}

	assert.Len(t, Filter(items, ""), 3, "empty query keeps everything")
	assert.Len(t, Filter(items, "ozempic"), 2, "match is case-insensitive")
	assert.Empty(t, Filter(items, "measles"))
}
