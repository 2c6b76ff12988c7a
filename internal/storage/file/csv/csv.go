// Package csv loads customer tables from delimited text files.
package csv

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"

	"github.com/drakos74/segments/internal/model"
	"github.com/drakos74/segments/internal/storage"
)

// Loader reads customer files with the given delimiter.
type Loader struct {
	comma rune
}

// NewLoader creates a new comma separated loader.
func NewLoader() *Loader {
	return &Loader{comma: ','}
}

// WithComma sets the field delimiter.
func (l *Loader) WithComma(comma rune) *Loader {
	l.comma = comma
	return l
}

// Load loads the customers from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*model.Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file '%s' %s: %w", path, err.Error(), storage.NotFoundErr)
	}
	return l.Read(ctx, path, b)
}

// Read parses the given file contents. The source is only used for reporting.
func (l *Loader) Read(ctx context.Context, source string, b []byte) (*model.Table, error) {
	// all columns are read as strings, parsing happens per column so that
	// malformed values can be reported with their row.
	df, err := imports.LoadFromCSV(ctx, bytes.NewReader(b), imports.CSVLoadOptions{
		Comma:            l.comma,
		TrimLeadingSpace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not parse '%s' %s: %w", source, err.Error(), storage.CouldNotLoadErr)
	}

	columns := make(map[string]dataframe.Series, len(df.Series))
	for _, s := range df.Series {
		columns[strings.TrimSpace(s.Name())] = s
	}
	for _, c := range model.Columns {
		if _, ok := columns[c]; !ok {
			return nil, fmt.Errorf("missing column '%s' in '%s': %w", c, source, storage.CouldNotLoadErr)
		}
	}

	n := df.NRows()
	customers := make([]model.Customer, n)
	for i := 0; i < n; i++ {
		c := model.Customer{}
		if c.ID, err = intValue(columns[model.ID], i); err != nil {
			return nil, rowErr(source, i, model.ID, err)
		}
		if c.Gender, err = stringValue(columns[model.Gender], i); err != nil {
			return nil, rowErr(source, i, model.Gender, err)
		}
		if c.Age, err = intValue(columns[model.Age], i); err != nil {
			return nil, rowErr(source, i, model.Age, err)
		}
		if c.Income, err = floatValue(columns[model.Income], i); err != nil {
			return nil, rowErr(source, i, model.Income, err)
		}
		if c.Score, err = floatValue(columns[model.Score], i); err != nil {
			return nil, rowErr(source, i, model.Score, err)
		}
		customers[i] = c
	}

	log.Debug().
		Str("source", source).
		Int("rows", n).
		Int("columns", len(df.Series)).
		Msg("parsed customer file")

	return model.NewTable(source, customers), nil
}

func rowErr(source string, row int, column string, err error) error {
	// row numbers are reported 1-based and after the header
	return fmt.Errorf("invalid value for '%s' at line %d of '%s' %s: %w", column, row+2, source, err.Error(), storage.CouldNotLoadErr)
}

func stringValue(s dataframe.Series, row int) (string, error) {
	switch v := s.Value(row).(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return "", fmt.Errorf("empty value")
		}
		return v, nil
	case nil:
		return "", fmt.Errorf("missing value")
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func floatValue(s dataframe.Series, row int) (float64, error) {
	str, err := stringValue(s, row)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value '%s'", str)
	}
	return v, nil
}

func intValue(s dataframe.Series, row int) (int, error) {
	str, err := stringValue(s, row)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}
