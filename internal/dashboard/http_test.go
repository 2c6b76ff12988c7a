package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drakos74/segments/internal/eda"
	"github.com/drakos74/segments/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionResponse struct {
	Session string `json:"session"`
	Data    Info   `json:"data"`
}

type segmentationResponse struct {
	Session string       `json:"session"`
	Data    Segmentation `json:"data"`
}

type pageResponse struct {
	Session string `json:"session"`
	Data    Page   `json:"data"`
}

type summaryResponse struct {
	Session string      `json:"session"`
	Data    eda.Summary `json:"data"`
}

func get(t *testing.T, url string, v interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func post(t *testing.T, url string, body string, v interface{}) int {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestService_Routes(t *testing.T) {
	s := newService(t, Config{})
	srv := httptest.NewServer(server.NewServer("test", 0).Add(s.Routes()...).Handler())
	defer srv.Close()

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/data", nil))

	var session sessionResponse
	require.Equal(t, http.StatusOK, get(t, srv.URL+"/api/session", &session))
	id := session.Session
	assert.NotEmpty(t, id)
	assert.Equal(t, id, session.Data.ID)
	assert.Equal(t, 200, session.Data.Rows)

	var segmentation segmentationResponse
	require.Equal(t, http.StatusOK, get(t, fmt.Sprintf("%s/api/clusters?session=%s&k=5&elbow=true", srv.URL, id), &segmentation))
	assert.Equal(t, id, segmentation.Session)
	assert.Equal(t, 5, segmentation.Data.K)
	assert.Equal(t, 200, len(segmentation.Data.Points))
	assert.Equal(t, 10, len(segmentation.Data.Elbow))

	// the session remembers the selection
	require.Equal(t, http.StatusOK, get(t, fmt.Sprintf("%s/api/session?session=%s", srv.URL, id), &session))
	assert.Equal(t, Controls{Mode: Clustering, K: 5, Elbow: true}, session.Data.Controls)

	var page pageResponse
	require.Equal(t, http.StatusOK, get(t, fmt.Sprintf("%s/data/customers?session=%s&offset=10&limit=5", srv.URL, id), &page))
	assert.Equal(t, 5, len(page.Data.Customers))
	assert.Equal(t, 11, page.Data.Customers[0].ID)

	var summary summaryResponse
	require.Equal(t, http.StatusOK, post(t, fmt.Sprintf("%s/api/analysis?session=%s", srv.URL, id), `{"mode":"eda"}`, &summary))
	assert.Equal(t, id, summary.Session)
	assert.Equal(t, 20, len(summary.Data.Age.Bins))

	require.Equal(t, http.StatusOK, post(t, fmt.Sprintf("%s/api/analysis?session=%s", srv.URL, id), `{"mode":"kmeans","k":3}`, &segmentation))
	assert.Equal(t, 3, segmentation.Data.K)
}

func TestService_RouteErrors(t *testing.T) {

	type test struct {
		method string
		path   string
		body   string
		code   int
	}

	tests := map[string]test{
		"k-too-large": {
			method: "GET",
			path:   "/api/clusters?k=11",
			code:   http.StatusBadRequest,
		},
		"k-too-small": {
			method: "GET",
			path:   "/api/clusters?k=1",
			code:   http.StatusBadRequest,
		},
		"k-not-a-number": {
			method: "GET",
			path:   "/api/clusters?k=five",
			code:   http.StatusBadRequest,
		},
		"elbow-not-a-bool": {
			method: "GET",
			path:   "/api/clusters?k=3&elbow=maybe",
			code:   http.StatusBadRequest,
		},
		"offset-beyond": {
			method: "GET",
			path:   "/data/customers?offset=500",
			code:   http.StatusBadRequest,
		},
		"unknown-mode": {
			method: "POST",
			path:   "/api/analysis",
			body:   `{"mode":"pca"}`,
			code:   http.StatusBadRequest,
		},
		"broken-body": {
			method: "POST",
			path:   "/api/analysis",
			body:   `{"mode":`,
			code:   http.StatusBadRequest,
		},
		"wrong-method": {
			method: "POST",
			path:   "/api/clusters",
			code:   http.StatusMethodNotAllowed,
		},
	}

	s := newService(t, Config{})
	srv := httptest.NewServer(server.NewServer("test", 0).Add(s.Routes()...).Handler())
	defer srv.Close()

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var code int
			switch tt.method {
			case "POST":
				code = post(t, srv.URL+tt.path, tt.body, nil)
			default:
				code = get(t, srv.URL+tt.path, nil)
			}
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestService_RouteMissingData(t *testing.T) {
	s := newService(t, Config{DataPath: "missing.csv"})
	srv := httptest.NewServer(server.NewServer("test", 0).Add(s.Routes()...).Handler())
	defer srv.Close()
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/api/eda", nil))
}
