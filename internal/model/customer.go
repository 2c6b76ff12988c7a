package model

import (
	"errors"
	"fmt"
)

// Column names as they appear in the customer file header.
const (
	ID     = "CustomerID"
	Gender = "Gender"
	Age    = "Age"
	Income = "Annual Income (k$)"
	Score  = "Spending Score (1-100)"
)

// Columns lists all columns a customer file must contain.
var Columns = []string{ID, Gender, Age, Income, Score}

var (
	UnknownColumnErr = errors.New("unknown column")
	NotNumericErr    = errors.New("column is not numeric")
)

// Customer is a single row of the customer data set.
type Customer struct {
	ID     int     `json:"id"`
	Gender string  `json:"gender"`
	Age    int     `json:"age"`
	Income float64 `json:"income"`
	Score  float64 `json:"score"`
}

// Value returns the numeric value of the given column for this customer.
func (c Customer) Value(column string) (float64, error) {
	switch column {
	case ID:
		return float64(c.ID), nil
	case Age:
		return float64(c.Age), nil
	case Income:
		return c.Income, nil
	case Score:
		return c.Score, nil
	case Gender:
		return 0, fmt.Errorf("'%s': %w", column, NotNumericErr)
	}
	return 0, fmt.Errorf("'%s': %w", column, UnknownColumnErr)
}

// Table is an immutable set of customers.
// Accessors hand out copies, so callers can never change the loaded rows.
type Table struct {
	source    string
	customers []Customer
}

// NewTable creates a table from the given customers for the given source.
func NewTable(source string, customers []Customer) *Table {
	cc := make([]Customer, len(customers))
	copy(cc, customers)
	return &Table{
		source:    source,
		customers: cc,
	}
}

// Source returns where the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.customers)
}

// Row returns the customer at the given index.
func (t *Table) Row(i int) Customer {
	return t.customers[i]
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Customer {
	cc := make([]Customer, len(t.customers))
	copy(cc, t.customers)
	return cc
}

// Column extracts the numeric values of the given column in row order.
func (t *Table) Column(name string) ([]float64, error) {
	values := make([]float64, len(t.customers))
	for i, c := range t.customers {
		v, err := c.Value(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Labels extracts the gender labels in row order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.customers))
	for i, c := range t.customers {
		labels[i] = c.Gender
	}
	return labels
}
