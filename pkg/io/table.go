package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/zonemap/pkg/errors"
	"github.com/matzehuels/zonemap/pkg/layout"
)

// Table is a normalized CSV table. Header holds normalized column names;
// every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadOption configures ReadCSV.
type ReadOption func(*readConfig)

type readConfig struct {
	weights map[Field][]float64
}

// WithSubScoreWeights sets the weights of an axis's three sub-scores.
// Weights that are not three non-negative numbers with a positive sum are
// ignored.
func WithSubScoreWeights(axis Field, w ...float64) ReadOption {
	return func(c *readConfig) {
		if len(w) != 3 {
			return
		}
		sum := 0.0
		for _, v := range w {
			if v < 0 || math.IsNaN(v) {
				return
			}
			sum += v
		}
		if sum > 0 {
			c.weights[axis] = slices.Clone(w)
		}
	}
}

// ReadCSV reads a CSV table from r, normalizes its headers and derives the
// axis columns from legacy or sub-score columns. ReadCSV does not close r.
func ReadCSV(r io.Reader, opts ...ReadOption) (*Table, error) {
	cfg := readConfig{weights: map[Field][]float64{
		FieldX: {1, 1, 1},
		FieldY: {1, 1, 1},
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty CSV input")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV header")
	}

	t := &Table{Header: make([]string, len(header))}
	for i, h := range header {
		t.Header[i] = NormalizeHeader(h)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV")
		}
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(t.Header))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}

	for _, f := range []Field{FieldX, FieldY} {
		if t.Column(f) < 0 {
			t.deriveLegacy(f)
		}
		t.deriveSubScores(f, cfg.weights[f])
	}
	return t, nil
}

// ImportCSV reads a CSV table from a file.
func ImportCSV(path string, opts ...ReadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f, opts...)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the index of the first column mapped to f, or -1.
func (t *Table) Column(f Field) int {
	for i, h := range t.Header {
		if g, ok := aliases[h]; ok && g == f {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column for f.
func (t *Table) Has(f Field) bool { return t.Column(f) >= 0 }

func (t *Table) index(header string) int {
	return slices.Index(t.Header, header)
}

// setColumn writes values into the named column, appending it if absent.
func (t *Table) setColumn(header string, values []string) {
	i := t.index(header)
	if i < 0 {
		t.Header = append(t.Header, header)
		for r := range t.Rows {
			t.Rows[r] = append(t.Rows[r], values[r])
		}
		return
	}
	for r := range t.Rows {
		t.Rows[r][i] = values[r]
	}
}

func (t *Table) deriveLegacy(f Field) {
	src := t.index(legacyColumns[f])
	if src < 0 {
		return
	}
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		v, err := parseNumber(row[src])
		if err != nil {
			continue
		}
		values[r] = formatScore(1 + 8*v/10)
	}
	t.setColumn(derivedColumns[f], values)
}

func (t *Table) deriveSubScores(f Field, weights []float64) {
	cols := make([]int, 0, 3)
	for _, name := range subScoreColumns[f] {
		i := t.index(name)
		if i < 0 {
			return
		}
		cols = append(cols, i)
	}

	target := derivedColumns[f]
	existing := t.Column(f)
	if existing >= 0 {
		target = t.Header[existing]
	}

	// each row averages the sub-scores that parse; a row with none keeps
	// its existing axis value
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		var acc, wsum float64
		for k, c := range cols {
			v, err := parseNumber(row[c])
			if err != nil {
				continue
			}
			acc += weights[k] * v
			wsum += weights[k]
		}
		switch {
		case wsum > 0:
			values[r] = formatScore(acc / wsum)
		case existing >= 0:
			values[r] = row[existing]
		}
	}
	t.setColumn(target, values)
}

// formatScore rounds half to even and clips to the 1–9 scale.
func formatScore(v float64) string {
	v = max(1, min(9, math.RoundToEven(v)))
	return strconv.Itoa(int(v))
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// RequireColumns reports the required canonical fields the table lacks.
func (t *Table) RequireColumns() error {
	var missing []string
	for _, f := range RequiredFields {
		if !t.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return &errors.MissingColumnsError{Columns: missing}
	}
	return nil
}

// RangeViolation is an axis value outside the chart range. Row is the
// 0-based data row index.
type RangeViolation struct {
	Row    int     `json:"row"`
	Column Field   `json:"column"`
	Value  float64 `json:"value"`
}

func (v RangeViolation) String() string {
	return fmt.Sprintf("row %d: %s = %g", v.Row, v.Column, v.Value)
}

// CheckRanges lists parseable axis values outside axis, in row order.
// Unparseable cells are left to Points.
func (t *Table) CheckRanges(axis layout.AxisRange) []RangeViolation {
	var out []RangeViolation
	cols := []struct {
		f Field
		i int
	}{{FieldX, t.Column(FieldX)}, {FieldY, t.Column(FieldY)}}

	for r, row := range t.Rows {
		for _, c := range cols {
			if c.i < 0 {
				continue
			}
			v, err := parseNumber(row[c.i])
			if err != nil {
				continue
			}
			if !axis.Contains(v) {
				out = append(out, RangeViolation{Row: r, Column: c.f, Value: v})
			}
		}
	}
	return out
}

// RowError describes a row skipped by Points.
type RowError struct {
	Row    int    `json:"row"`
	Column Field  `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Column, e.Reason)
}

// Points converts rows to points. Rows with an unparseable number are
// skipped and reported. The returned error is non-nil only when required
// columns are missing.
func (t *Table) Points() ([]layout.Point, []RowError, error) {
	if err := t.RequireColumns(); err != nil {
		return nil, nil, err
	}
	var (
		li   = t.Column(FieldLabel)
		xi   = t.Column(FieldX)
		yi   = t.Column(FieldY)
		mi   = t.Column(FieldMagnitude)
		ni   = t.Column(FieldNote)
		pts  = make([]layout.Point, 0, len(t.Rows))
		skip []RowError
	)

	for r, row := range t.Rows {
		var (
			vals [3]float64
			bad  *RowError
		)
		for k, c := range []struct {
			f Field
			i int
		}{{FieldX, xi}, {FieldY, yi}, {FieldMagnitude, mi}} {
			v, err := parseNumber(row[c.i])
			if err != nil {
				bad = &RowError{Row: r, Column: c.f, Value: row[c.i], Reason: err.Error()}
				break
			}
			vals[k] = v
		}
		if bad != nil {
			skip = append(skip, *bad)
			continue
		}

		p := layout.Point{
			Label:     row[li],
			X:         vals[0],
			Y:         vals[1],
			Magnitude: vals[2],
		}
		if ni >= 0 {
			p.Note = row[ni]
		}
		pts = append(pts, p)
	}
	return pts, skip, nil
}

// WriteCSV writes the table with display headers.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = DisplayName(h)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// ExportCSV writes the table to a file.
func (t *Table) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FromPoints builds a table with canonical headers from points.
func FromPoints(points []layout.Point) *Table {
	t := &Table{Header: []string{"label", "xvalue", "yvalue", "magnitude", "note"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []string{
			p.Label,
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
			strconv.FormatFloat(p.Magnitude, 'f', -1, 64),
			p.Note,
		})
	}
	return t
}
