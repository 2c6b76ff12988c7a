package server

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	K int `json:"k"`
}

func newTestServer() *Server {
	return NewServer("test", 0).
		Add(Live()).
		AddRoute(GET, Api, "ok", func(ctx context.Context, r *http.Request) ([]byte, int, error) {
			return Json(map[string]int{"k": 5})
		}).
		AddRoute(GET, Api, "bad", func(ctx context.Context, r *http.Request) ([]byte, int, error) {
			return nil, http.StatusBadRequest, errors.New("bad input")
		}).
		AddRoute(GET, Api, "fail", func(ctx context.Context, r *http.Request) ([]byte, int, error) {
			return nil, 0, errors.New("broken")
		}).
		AddRoute(POST, Api, "echo", func(ctx context.Context, r *http.Request) ([]byte, int, error) {
			var p payload
			if err := JsonRead(r, true, &p); err != nil {
				return nil, http.StatusBadRequest, err
			}
			return Json(p)
		}).
		Mount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}))
}

func TestServer_Routes(t *testing.T) {

	type test struct {
		method string
		path   string
		body   string
		code   int
		resp   string
	}

	tests := map[string]test{
		"live": {
			method: "GET",
			path:   "/data",
			code:   http.StatusOK,
		},
		"ok": {
			method: "GET",
			path:   "/api/ok",
			code:   http.StatusOK,
			resp:   `{"k":5}`,
		},
		"bad-request": {
			method: "GET",
			path:   "/api/bad",
			code:   http.StatusBadRequest,
			resp:   `{"error":"bad input"}`,
		},
		"internal-error": {
			method: "GET",
			path:   "/api/fail",
			code:   http.StatusInternalServerError,
			resp:   `{"error":"broken"}`,
		},
		"wrong-method": {
			method: "POST",
			path:   "/api/ok",
			code:   http.StatusMethodNotAllowed,
		},
		"post-json": {
			method: "POST",
			path:   "/api/echo",
			body:   `{"k":3}`,
			code:   http.StatusOK,
			resp:   `{"k":3}`,
		},
		"post-invalid-json": {
			method: "POST",
			path:   "/api/echo",
			body:   `{"k":`,
			code:   http.StatusBadRequest,
		},
		"mount": {
			method: "GET",
			path:   "/metrics",
			code:   http.StatusOK,
			resp:   "metrics",
		},
	}

	srv := httptest.NewServer(newTestServer().Debug().Handler())
	defer srv.Close()

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.code, resp.StatusCode)
			if tt.resp != "" {
				b, err := ioutil.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.resp, string(b))
			}
		})
	}
}

func TestRoute_Pattern(t *testing.T) {
	assert.Equal(t, "/data", Live().Pattern())
	assert.Equal(t, "/api/clusters", NewRoute(GET, Api, "clusters", nil).Pattern())
}
