// Package dashboard wires the user controls of the dashboard to the analysis pipeline.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/segments/internal/buffer"
	"github.com/drakos74/segments/internal/cluster"
	"github.com/drakos74/segments/internal/eda"
	"github.com/drakos74/segments/internal/features"
	"github.com/drakos74/segments/internal/metrics"
	"github.com/drakos74/segments/internal/model"
	"github.com/drakos74/segments/internal/storage"
)

var InvalidInputErr = errors.New("invalid input")

// Service runs the analysis for dashboard sessions.
type Service struct {
	cfg      Config
	tables   *storage.Cache
	engine   cluster.Engine
	metrics  *metrics.Metrics
	sessions map[string]*Session
	mutex    *sync.Mutex
	now      func() time.Time
}

// New creates a new dashboard service.
func New(cfg Config, tables *storage.Cache, m *metrics.Metrics) (*Service, error) {
	cfg = cfg.WithDefaults()
	if cfg.MinK > cfg.MaxK {
		return nil, fmt.Errorf("min k %d above max k %d: %w", cfg.MinK, cfg.MaxK, InvalidInputErr)
	}
	if cfg.DefaultK < cfg.MinK || cfg.DefaultK > cfg.MaxK {
		return nil, fmt.Errorf("default k %d outside [%d,%d]: %w", cfg.DefaultK, cfg.MinK, cfg.MaxK, InvalidInputErr)
	}
	engine, err := cluster.NewEngine(cfg.Engine, cfg.KMeans)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New("segments")
	}
	return &Service{
		cfg:      cfg,
		tables:   tables,
		engine:   engine,
		metrics:  m,
		sessions: make(map[string]*Session),
		mutex:    new(sync.Mutex),
		now:      time.Now,
	}, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Open starts a new session on the current version of the data file.
func (s *Service) Open(ctx context.Context) (*Session, error) {
	start := time.Now()
	table, err := s.tables.Get(ctx, s.cfg.DataPath)
	s.metrics.Observe("load", start, err)
	if err != nil {
		return nil, fmt.Errorf("could not load customers: %w", err)
	}
	s.metrics.Rows(table.Len())

	now := s.now()
	session := &Session{
		ID:    uuid.New().String(),
		Table: table,
		Controls: Controls{
			Mode: Explore,
			K:    s.cfg.DefaultK,
		},
		Opened: now,
		Seen:   now,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sweep(now)
	s.sessions[session.ID] = session
	s.metrics.Sessions(len(s.sessions))
	log.Info().
		Str("session", session.ID).
		Str("source", table.Source()).
		Int("rows", table.Len()).
		Msg("opened session")
	return session, nil
}

// Resume returns the session with the given id, or opens a new one if it does not exist.
func (s *Service) Resume(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		s.mutex.Lock()
		session, ok := s.sessions[id]
		if ok {
			session.Seen = s.now()
		}
		s.mutex.Unlock()
		if ok {
			return session, nil
		}
		log.Debug().Str("session", id).Msg("unknown session")
	}
	return s.Open(ctx)
}

// Close ends the given session.
func (s *Service) Close(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, id)
	s.metrics.Sessions(len(s.sessions))
}

// sweep drops idle sessions, the caller holds the lock.
func (s *Service) sweep(now time.Time) {
	ttl := s.cfg.sessionTTL()
	for id, session := range s.sessions {
		if now.Sub(session.Seen) > ttl {
			delete(s.sessions, id)
			log.Debug().Str("session", id).Msg("expired session")
		}
	}
}

// Page is a slice of the raw customer rows.
type Page struct {
	Offset    int              `json:"offset"`
	Total     int              `json:"total"`
	Customers []model.Customer `json:"customers"`
}

// Raw returns the raw rows of the session table, starting at offset.
// A non-positive limit returns all remaining rows.
func (s *Service) Raw(session *Session, offset, limit int) (Page, error) {
	rows := session.Table.Rows()
	if offset < 0 || offset > len(rows) {
		return Page{}, fmt.Errorf("offset %d outside [0,%d]: %w", offset, len(rows), InvalidInputErr)
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return Page{
		Offset:    offset,
		Total:     len(rows),
		Customers: rows[offset:end],
	}, nil
}

// Explore builds the exploratory summary of the session table.
func (s *Service) Explore(session *Session) (eda.Summary, error) {
	start := time.Now()
	summary, err := eda.Summarize(session.Table, s.cfg.Bins)
	s.metrics.Observe("eda", start, err)
	if err != nil {
		return eda.Summary{}, err
	}
	s.remember(session, Controls{Mode: Explore, K: session.Controls.K, Elbow: session.Controls.Elbow})
	return summary, nil
}

// Point is a customer in the cluster scatter, in original units.
type Point struct {
	ID      int     `json:"id"`
	Age     int     `json:"age"`
	Gender  string  `json:"gender"`
	Income  float64 `json:"income"`
	Score   float64 `json:"score"`
	Cluster int     `json:"cluster"`
}

// Center is a cluster center in original and in scaled units.
type Center struct {
	Cluster int       `json:"cluster"`
	Size    int       `json:"size"`
	Income  float64   `json:"income"`
	Score   float64   `json:"score"`
	Scaled  []float64 `json:"scaled"`
}

// Profile is the average customer of a cluster.
type Profile struct {
	Cluster int     `json:"cluster"`
	Size    int     `json:"size"`
	Age     float64 `json:"age"`
	Income  float64 `json:"income"`
	Score   float64 `json:"score"`
}

// Segmentation is the output of the clustering view.
type Segmentation struct {
	K          int             `json:"k"`
	Engine     string          `json:"engine"`
	Inertia    float64         `json:"inertia"`
	Silhouette float64         `json:"silhouette"`
	Points     []Point         `json:"points"`
	Centers    []Center        `json:"centers"`
	Profiles   []Profile       `json:"profiles"`
	Scaler     features.Scaler `json:"scaler"`
	Elbow      []cluster.Point `json:"elbow,omitempty"`
}

// Cluster segments the session customers into the requested number of clusters.
func (s *Service) Cluster(session *Session, controls Controls) (*Segmentation, error) {
	k := controls.K
	if k == 0 {
		k = session.Controls.K
	}
	if k < s.cfg.MinK || k > s.cfg.MaxK {
		return nil, fmt.Errorf("k must be within [%d,%d] but was %d: %w", s.cfg.MinK, s.cfg.MaxK, k, InvalidInputErr)
	}

	scaled, err := features.Prepare(session.Table, features.Segmentation...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.engine.Fit(scaled.Matrix(), k)
	s.metrics.Observe("fit", start, err)
	if err != nil {
		return nil, fmt.Errorf("could not cluster for k = %d: %w", k, err)
	}

	segmentation := &Segmentation{
		K:        k,
		Engine:   s.engine.Name(),
		Inertia:  result.Inertia,
		Points:   points(session.Table, result.Assignments),
		Centers:  centers(scaled, result),
		Profiles: profiles(session.Table, result),
		Scaler:   scaled.Scaler,
	}

	n := session.Table.Len()
	if k >= 2 && k < n {
		start = time.Now()
		segmentation.Silhouette, err = cluster.Silhouette(scaled.Matrix(), result.Assignments)
		s.metrics.Observe("silhouette", start, err)
		if err != nil {
			return nil, err
		}
	}

	if controls.Elbow {
		maxK := s.cfg.ElbowMaxK
		if maxK > n {
			maxK = n
		}
		start = time.Now()
		segmentation.Elbow, err = s.engine.Curve(scaled.Matrix(), maxK)
		s.metrics.Observe("elbow", start, err)
		if err != nil {
			return nil, fmt.Errorf("could not compute inertia curve: %w", err)
		}
	}

	log.Debug().
		Str("session", session.ID).
		Int("k", k).
		Float64("inertia", result.Inertia).
		Int("iterations", result.Iterations).
		Bool("elbow", controls.Elbow).
		Msg("clustered customers")

	s.remember(session, Controls{Mode: Clustering, K: k, Elbow: controls.Elbow})
	return segmentation, nil
}

func (s *Service) remember(session *Session, controls Controls) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	session.Controls = controls
}

func points(table *model.Table, labels []int) []Point {
	pp := make([]Point, table.Len())
	for i := range pp {
		c := table.Row(i)
		pp[i] = Point{
			ID:      c.ID,
			Age:     c.Age,
			Gender:  c.Gender,
			Income:  c.Income,
			Score:   c.Score,
			Cluster: labels[i],
		}
	}
	return pp
}

func centers(scaled *features.Scaled, result *cluster.Result) []Center {
	original := scaled.Inverse(result.Centers)
	sizes := result.Sizes()
	cc := make([]Center, result.K())
	for i := range cc {
		cc[i] = Center{
			Cluster: i,
			Size:    sizes[i],
			Income:  original.At(i, 0),
			Score:   original.At(i, 1),
			Scaled:  result.Center(i),
		}
	}
	return cc
}

func profiles(table *model.Table, result *cluster.Result) []Profile {
	collectors := make([]*buffer.StatsCollector, result.K())
	for i := range collectors {
		collectors[i] = buffer.NewStatsCollector(3)
	}
	for i, l := range result.Assignments {
		c := table.Row(i)
		collectors[l].Push(float64(c.Age), c.Income, c.Score)
	}
	pp := make([]Profile, len(collectors))
	for i, collector := range collectors {
		stats := collector.Stats()
		pp[i] = Profile{
			Cluster: i,
			Size:    collector.Size(),
			Age:     stats[0].Avg(),
			Income:  stats[1].Avg(),
			Score:   stats[2].Avg(),
		}
	}
	return pp
}
