package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="results">
  <div class="result results_links results_links_deep web-result">
    <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwalkies.example%2Fapp&amp;rut=abc">Walkies <b>dog</b> walking</a></h2>
    <a class="result__snippet" href="#">Book a <b>dog walker</b> in minutes.</a>
  </div>
  <div class="result results_links web-result">
    <h2><a class="result__a" href="https://rover.example/">Rover</a></h2>
    <a class="result__snippet" href="#">Pet sitting marketplace.</a>
  </div>
  <div class="result results_links web-result">
    <h2><a class="result__a" href="">No link</a></h2>
  </div>
  <div class="result results_links web-result">
    <h2><a class="result__a" href="https://third.example/">Third</a></h2>
  </div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	got, err := parseResults(resultsPage, 10)
	require.NoError(t, err)

	want := []Result{
		{Title: "Walkies dog walking", URL: "https://walkies.example/app", Snippet: "Book a dog walker in minutes."},
		{Title: "Rover", URL: "https://rover.example/", Snippet: "Pet sitting marketplace."},
		{Title: "Third", URL: "https://third.example/"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseResults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResults_Limit(t *testing.T) {
	got, err := parseResults(resultsPage, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Rover", got[1].Title)

	none, err := parseResults(resultsPage, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct{ in, want string }{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2Fx%3Fy%3D1&rut=z", "https://a.example/x?y=1"},
		{"https://b.example/", "https://b.example/"},
		{"//duckduckgo.com/about", "//duckduckgo.com/about"},
		{"//duckduckgo.com/l/?rut=nothing", "//duckduckgo.com/l/?rut=nothing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unwrapRedirect(tt.in), tt.in)
	}
}

func TestHTMLSearcher_Search(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	s := NewHTMLSearcher(HTMLConfig{BaseURL: srv.URL + "/html/"})
	results, err := s.Search(context.Background(), "dog walking app", 5)
	require.NoError(t, err)

	assert.Equal(t, "dog walking app", gotQuery)
	assert.NotEmpty(t, gotUA)
	assert.Len(t, results, 3)
}

func TestHTMLSearcher_Failures(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()
		_, err := NewHTMLSearcher(HTMLConfig{BaseURL: srv.URL}).Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, ErrSearchUnavailable)
		assert.Contains(t, err.Error(), "HTTP 403")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()
		_, err := NewHTMLSearcher(HTMLConfig{BaseURL: url}).Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, ErrSearchUnavailable)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := NewHTMLSearcher(HTMLConfig{}).Search(context.Background(), "   ", 5)
		assert.ErrorIs(t, err, ErrSearchUnavailable)
	})
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Search(context.Background(), "q", 5)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
