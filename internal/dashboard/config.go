package dashboard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/drakos74/segments/internal/cluster"
	"github.com/drakos74/segments/internal/eda"
)

const (
	DefaultDataPath   = "data/customers.csv"
	DefaultMinK       = 2
	DefaultMaxK       = 10
	DefaultK          = 5
	DefaultElbowMaxK  = 10
	DefaultSessionTTL = 30 * time.Minute
)

// Config configures the dashboard service.
type Config struct {
	DataPath string `json:"data_path"`
	// MinK and MaxK bound the cluster count a user can pick.
	MinK     int `json:"min_k"`
	MaxK     int `json:"max_k"`
	DefaultK int `json:"default_k"`
	// ElbowMaxK is the largest k of the inertia curve.
	ElbowMaxK      int             `json:"elbow_max_k"`
	Bins           int             `json:"bins"`
	Engine         string          `json:"engine"`
	KMeans         cluster.Options `json:"kmeans"`
	SessionMinutes int             `json:"session_minutes"`
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() Config {
	return Config{
		DataPath:       DefaultDataPath,
		MinK:           DefaultMinK,
		MaxK:           DefaultMaxK,
		DefaultK:       DefaultK,
		ElbowMaxK:      DefaultElbowMaxK,
		Bins:           eda.DefaultBins,
		Engine:         cluster.GomlEngine,
		KMeans:         cluster.DefaultOptions(),
		SessionMinutes: int(DefaultSessionTTL.Minutes()),
	}
}

// WithDefaults fills in any unset field.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.MinK <= 0 {
		c.MinK = d.MinK
	}
	if c.MaxK <= 0 {
		c.MaxK = d.MaxK
	}
	if c.DefaultK <= 0 {
		c.DefaultK = d.DefaultK
	}
	if c.ElbowMaxK <= 0 {
		c.ElbowMaxK = d.ElbowMaxK
	}
	if c.Bins <= 0 {
		c.Bins = d.Bins
	}
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.SessionMinutes <= 0 {
		c.SessionMinutes = d.SessionMinutes
	}
	c.KMeans = c.KMeans.WithDefaults()
	return c
}

// ParseConfig decodes the json config over the defaults.
// An empty message gives the default configuration.
func ParseConfig(b json.RawMessage) (Config, error) {
	cfg := DefaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not parse dashboard config: %s: %w", err.Error(), InvalidInputErr)
		}
	}
	return cfg.WithDefaults(), nil
}

func (c Config) sessionTTL() time.Duration {
	return time.Duration(c.SessionMinutes) * time.Minute
}
