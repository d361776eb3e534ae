package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "123456", body["confirmation_code"])

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt"})
	}))
	defer srv.Close()

	tok, err := NewHTTPClient(srv.URL).Token(context.Background(), "alice", "123456")
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)
}

func TestErrorBodyBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"you already reviewed this title","code":"CONFLICT"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("jwt")
	_, err := c.PostReview(context.Background(), 1, "again", 5)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Contains(t, err.Error(), "already reviewed")
}

func TestListTitlesQueryAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/titles", r.URL.Path)
		assert.Equal(t, "drama", r.URL.Query().Get("genre"))
		assert.Equal(t, "1999", r.URL.Query().Get("year"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"data":[{"id":3,"name":"Matrix","year":1999,"rating":8.5,"genre":[]}],
			"pagination":{"page":2,"page_size":20,"total":21,"total_pages":2}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	c.SetToken("jwt")
	page, err := c.ListTitles(context.Background(), TitleFilter{Genre: "drama", Year: 1999}, 2)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Matrix", page.Data[0].Name)
	require.NotNil(t, page.Data[0].Rating)
	assert.InDelta(t, 8.5, *page.Data[0].Rating, 0.001)
	assert.Equal(t, int64(21), page.Pagination.Total)
}

func TestDeleteReviewNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/titles/1/reviews/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPClient(srv.URL).DeleteReview(context.Background(), 1, 9))
}

func TestNonJSONErrorKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).GetTitle(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "request failed with status 502", apiErr.Error())
}
