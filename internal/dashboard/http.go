package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/drakos74/segments/internal/cluster"
	"github.com/drakos74/segments/internal/eda"
	"github.com/drakos74/segments/internal/features"
	"github.com/drakos74/segments/internal/server"
	"github.com/drakos74/segments/internal/storage"
)

// SessionParam is the query parameter carrying the session id.
const SessionParam = "session"

// Response wraps every payload with the session it was computed for.
type Response struct {
	Session string      `json:"session"`
	Data    interface{} `json:"data"`
}

// Routes returns the http routes of the dashboard.
func (s *Service) Routes() []server.Route {
	return []server.Route{
		server.Live(),
		server.NewRoute(server.GET, server.Api, "session", s.session),
		server.NewRoute(server.GET, server.Data, "customers", s.customers),
		server.NewRoute(server.GET, server.Api, "eda", s.eda),
		server.NewRoute(server.GET, server.Api, "clusters", s.clusters),
		server.NewRoute(server.POST, server.Api, "analysis", s.analysis),
	}
}

// StatusCode maps pipeline errors to http status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, InvalidInputErr),
		errors.Is(err, features.InvalidInputErr),
		errors.Is(err, cluster.InvalidInputErr),
		errors.Is(err, eda.InvalidInputErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.NotFoundErr):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Service) respond(session *Session, v interface{}, err error) ([]byte, int, error) {
	if err != nil {
		return nil, StatusCode(err), err
	}
	return server.Json(Response{
		Session: session.ID,
		Data:    v,
	})
}

func (s *Service) resume(ctx context.Context, r *http.Request) (*Session, error) {
	return s.Resume(ctx, r.URL.Query().Get(SessionParam))
}

func (s *Service) session(ctx context.Context, r *http.Request) ([]byte, int, error) {
	session, err := s.resume(ctx, r)
	if err != nil {
		return nil, StatusCode(err), err
	}
	return s.respond(session, session.Info(), nil)
}

func (s *Service) customers(ctx context.Context, r *http.Request) ([]byte, int, error) {
	session, err := s.resume(ctx, r)
	if err != nil {
		return nil, StatusCode(err), err
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	page, err := s.Raw(session, offset, limit)
	return s.respond(session, page, err)
}

func (s *Service) eda(ctx context.Context, r *http.Request) ([]byte, int, error) {
	session, err := s.resume(ctx, r)
	if err != nil {
		return nil, StatusCode(err), err
	}
	summary, err := s.Explore(session)
	return s.respond(session, summary, err)
}

func (s *Service) clusters(ctx context.Context, r *http.Request) ([]byte, int, error) {
	session, err := s.resume(ctx, r)
	if err != nil {
		return nil, StatusCode(err), err
	}
	k, err := intParam(r, "k", 0)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	elbow := false
	if v := r.URL.Query().Get("elbow"); v != "" {
		elbow, err = strconv.ParseBool(v)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid elbow '%s': %w", v, InvalidInputErr)
		}
	}
	segmentation, err := s.Cluster(session, Controls{Mode: Clustering, K: k, Elbow: elbow})
	return s.respond(session, segmentation, err)
}

// analysis runs whichever view the posted controls select.
func (s *Service) analysis(ctx context.Context, r *http.Request) ([]byte, int, error) {
	var controls Controls
	if err := server.JsonRead(r, false, &controls); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("could not read controls: %s: %w", err.Error(), InvalidInputErr)
	}
	session, err := s.resume(ctx, r)
	if err != nil {
		return nil, StatusCode(err), err
	}
	mode, err := ParseMode(string(controls.Mode))
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	switch mode {
	case Clustering:
		segmentation, err := s.Cluster(session, controls)
		return s.respond(session, segmentation, err)
	default:
		summary, err := s.Explore(session)
		return s.respond(session, summary, err)
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, v, InvalidInputErr)
	}
	return i, nil
}
