package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Action string

type Method string

const (
	Data Action = "data"
	Api  Action = "api"

	GET  Method = "GET"
	POST Method = "POST"
)

// Handler handles a request and returns the payload and status code.
// A zero code means http.StatusOK, unless an error is returned.
type Handler func(ctx context.Context, r *http.Request) ([]byte, int, error)

type Route struct {
	Action Action
	Path   string
	Method Method
	Exec   Handler
}

// NewRoute creates a new route.
func NewRoute(method Method, action Action, path string, exec Handler) Route {
	return Route{
		Action: action,
		Path:   path,
		Method: method,
		Exec:   exec,
	}
}

// Pattern returns the url pattern of the route.
func (r Route) Pattern() string {
	if r.Path != "" {
		return fmt.Sprintf("/%s/%s", r.Action, r.Path)
	}
	return fmt.Sprintf("/%s", r.Action)
}

type Server struct {
	name    string
	port    int
	debug   bool
	timeout time.Duration
	// block lets only one request run at a time.
	block  chan struct{}
	routes []Route
	mounts map[string]http.Handler
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:    name,
		port:    port,
		timeout: 30 * time.Second,
		block:   make(chan struct{}, 1),
		routes:  make([]Route, 0),
		mounts:  make(map[string]http.Handler),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// WithTimeout sets the timeout of each request.
func (s *Server) WithTimeout(timeout time.Duration) *Server {
	s.timeout = timeout
	return s
}

// AddRoute adds a new route to the server
func (s *Server) AddRoute(method Method, action Action, path string, exec Handler) *Server {
	return s.Add(NewRoute(method, action, path, exec))
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Mount serves the given handler under the given path, outside the request block.
func (s *Server) Mount(path string, handler http.Handler) *Server {
	s.mounts[path] = handler
	return s
}

func (s *Server) handle(route Route) func(w http.ResponseWriter, r *http.Request) {
	pattern := route.Pattern()
	return func(w http.ResponseWriter, r *http.Request) {
		if Method(r.Method) != route.Method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if s.debug {
			log.Debug().
				Str("url", fmt.Sprintf("%+v", r.URL)).
				Str("remote-address", r.RemoteAddr).
				Str("method", r.Method).
				Msg("received request")
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		// requests are handled one at a time,
		// each one recomputes everything it shows.
		select {
		case s.block <- struct{}{}:
		case <-ctx.Done():
			s.error(w, pattern, fmt.Errorf("request not served: %w", ctx.Err()), http.StatusServiceUnavailable)
			return
		}
		start := time.Now()
		defer func() {
			<-s.block
			log.Debug().
				Str("route", pattern).
				Float64("duration", time.Since(start).Seconds()).
				Msg("completed execution")
		}()

		b, code, err := route.Exec(ctx, r)
		if err != nil {
			if code == 0 || code == http.StatusOK {
				code = http.StatusInternalServerError
			}
			s.error(w, pattern, err, code)
			return
		}
		if code == 0 {
			code = http.StatusOK
		}
		s.respond(w, b, code)
	}
}

// Handler builds the http handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range s.routes {
		mux.HandleFunc(route.Pattern(), s.handle(route))
	}
	for path, handler := range s.mounts {
		mux.Handle(path, handler)
	}
	return mux
}

// Run starts the server and blocks until the context is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Str("server", s.name).Msg("could not shut down server")
		}
	}()

	log.Info().Str("server", s.name).Int("port", s.port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) respond(w http.ResponseWriter, b []byte, code int) {
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(code)
	_, err := w.Write(b)
	if err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, pattern string, err error, code int) {
	log.Error().Err(err).Str("route", pattern).Int("code", code).Msg("error for http request")
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	s.respond(w, b, code)
}

// Live is the liveness route.
func Live() Route {
	return Route{
		Action: Data,
		Method: GET,
		Exec: func(ctx context.Context, r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

// JsonRead reads the json body of the request into v.
func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Info().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("request", r.RequestURI).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) > 0 {
		err = json.Unmarshal(body, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Json marshals the given value as a response payload.
func Json(v interface{}) ([]byte, int, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("could not encode response: %w", err)
	}
	return b, http.StatusOK, nil
}
