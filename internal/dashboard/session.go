package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/drakos74/segments/internal/model"
)

// Mode is the analysis view of a session.
type Mode string

const (
	Explore    Mode = "eda"
	Clustering Mode = "kmeans"
)

// ParseMode parses the given mode, an empty string is the exploratory view.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", Explore:
		return Explore, nil
	case Clustering:
		return Clustering, nil
	}
	return "", fmt.Errorf("unknown mode '%s': %w", s, InvalidInputErr)
}

// Controls are the user inputs of a session.
type Controls struct {
	Mode  Mode `json:"mode"`
	K     int  `json:"k"`
	Elbow bool `json:"elbow"`
}

// Session holds the table a user works on and their last controls.
type Session struct {
	ID       string       `json:"id"`
	Table    *model.Table `json:"-"`
	Controls Controls     `json:"controls"`
	Opened   time.Time    `json:"opened"`
	Seen     time.Time    `json:"seen"`
}

// Info describes the session for clients.
type Info struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Controls Controls  `json:"controls"`
	Opened   time.Time `json:"opened"`
}

// Info returns the client description of the session.
func (s *Session) Info() Info {
	return Info{
		ID:       s.ID,
		Source:   s.Table.Source(),
		Rows:     s.Table.Len(),
		Controls: s.Controls,
		Opened:   s.Opened,
	}
}
