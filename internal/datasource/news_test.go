package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Markets</title>
<item>
  <title>Apple &lt;b&gt;beats&lt;/b&gt; estimates as iPhone sales surge</title>
  <link>https://example.com/apple</link>
  <description>&lt;p&gt;Shares of &lt;a href="#"&gt;AAPL&lt;/a&gt; rose.&lt;/p&gt;</description>
  <pubDate>Tue, 02 Jan 2024 14:30:00 GMT</pubDate>
</item>
<item>
  <title>Tesla and Apple lead tech selloff</title>
  <link>https://example.com/selloff</link>
  <pubDate>Wed, 03 Jan 2024 09:00:00 GMT</pubDate>
</item>
<item>
  <title>Pineapple prices climb</title>
  <link>https://example.com/fruit</link>
  <pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate>
</item>
</channel></rss>`

func TestRSSHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssXML))
	}))
	defer srv.Close()

	src := NewRSS([]Feed{{Name: "Test Wire", URL: srv.URL}}, nil)
	got, err := src.Headlines(context.Background(), []string{"aapl", "TSLA"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// newest first
	assert.Equal(t, "Tesla and Apple lead tech selloff", got[0].Headline)
	assert.Equal(t, "Tesla and Apple lead tech selloff", got[1].Headline)
	assert.ElementsMatch(t, []string{"AAPL", "TSLA"}, []string{got[0].Stock, got[1].Stock})

	last := got[2]
	assert.Equal(t, "Apple beats estimates as iPhone sales surge", last.Headline)
	assert.Equal(t, "AAPL", last.Stock)
	assert.Equal(t, "Test Wire", last.Publisher)
	assert.Equal(t, "https://example.com/apple", last.URL)
	assert.True(t, last.Timestamp.Equal(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)))
}

func TestRSSHeadlinesSkipsFailedFeed(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssXML))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	src := NewRSS([]Feed{{Name: "bad", URL: bad.URL}, {Name: "good", URL: good.URL}}, nil)
	got, err := src.Headlines(context.Background(), []string{"TSLA"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = NewRSS([]Feed{{Name: "bad", URL: bad.URL}}, nil).Headlines(context.Background(), []string{"TSLA"})
	assert.Error(t, err)
}

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "Shares rose 5%", cleanHTML("<p>Shares <b>rose</b>\n 5%</p>"))
	assert.Equal(t, "", cleanHTML(""))
}

func TestMentions(t *testing.T) {
	tests := []struct {
		text   string
		symbol string
		want   bool
	}{
		{"Apple unveils new Mac", "AAPL", true},
		{"$AAPL breaks out", "AAPL", true},
		{"Pineapple futures", "AAPL", false},
		{"Coca-Cola raises dividend", "KO", true},
		{"Intel and AMD rally", "AMD", true},
		{"Intelligence report", "INTC", false},
		{"Fed holds rates", "MSFT", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mentions(tt.text, tt.symbol), "%q / %s", tt.text, tt.symbol)
	}
}
