package patentsview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/models"
)

func testFetcher(baseURL string) *Fetcher {
	return NewFetcher(&config.Config{
		PatentsViewBaseURL: baseURL,
		UserAgent:          "copyhound-test/1.0",
	}, zap.NewNop())
}

func TestSearchMapsPatents(t *testing.T) {
	recentDate := fmt.Sprintf("%d-05-07", time.Now().Year()-1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "copyhound-test/1.0", r.Header.Get("User-Agent"))

		var query searchQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		textAny, ok := query.Query["_text_any"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "irrigation apparatus", textAny["patent_title"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"patents": [{
				"patent_number": "5123456",
				"patent_title": "Irrigation apparatus",
				"patent_date": "1998-07-14",
				"patent_abstract": "An apparatus for watering fields.",
				"patent_type": "utility",
				"inventors": [{"inventor_first_name": "Ada", "inventor_last_name": "Lovelace"}],
				"assignees": [{"assignee_organization": "Acme Corp"}]
			}, {
				"patent_number": "9876543",
				"patent_title": "Drip irrigation controller",
				"patent_date": "%s",
				"patent_type": "utility"
			}]
		}`, recentDate)
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	candidates, err := f.Search(context.Background(), "irrigation apparatus", models.TypePatent)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	old := candidates[0]
	assert.Equal(t, "Irrigation apparatus", old.Title)
	assert.Equal(t, "Ada Lovelace", old.Creator)
	assert.Equal(t, models.TypePatent, old.ContentType)
	require.NotNil(t, old.PublicationYear)
	assert.Equal(t, 1998, *old.PublicationYear)
	assert.Equal(t, "https://patents.google.com/patent/US5123456", old.SourceURL)
	assert.Equal(t, "An apparatus for watering fields.", old.Description)
	assert.Equal(t, "expired", old.Extra["ip_status"])
	assert.Equal(t, "Acme Corp", old.Extra["assignee"])
	assert.InDelta(t, 0.9, old.Confidence, 1e-9)

	recent := candidates[1]
	assert.Equal(t, "active", recent.Extra["ip_status"])
	assert.Empty(t, recent.Creator)
}

func TestSearchSkipsForeignContentTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for non-patent content type")
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	candidates, err := f.Search(context.Background(), "irrigation apparatus", models.TypeBook)
	require.NoError(t, err)
	assert.Nil(t, candidates)
}

func TestSearchPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	_, err := f.Search(context.Background(), "irrigation apparatus", models.TypePatent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestDetailsQueriesByPatentNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var query searchQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.Equal(t, "5123456", query.Query["patent_number"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"patents": [{
				"patent_number": "5123456",
				"patent_title": "Irrigation apparatus",
				"patent_date": "1998-07-14",
				"patent_type": "utility"
			}]
		}`))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	cand, err := f.Details(context.Background(), "5123456")
	require.NoError(t, err)
	assert.Equal(t, "Irrigation apparatus", cand.Title)
	assert.Equal(t, "5123456", cand.Extra["patent_number"])
}

func TestDetailsUnknownPatent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"patents": []}`))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL)
	_, err := f.Details(context.Background(), "0000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
