package coefficient

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a whitespace-, tab- or comma-delimited table from r. Header
// lines, comments and any row whose selected tokens do not parse as two
// finite positive floats are skipped with a warning.
func Parse(r io.Reader, src Source, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ecol, vcol, err := src.columns()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}

	var (
		points  []Point
		skipped int
		line    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		row := strings.TrimSpace(sc.Text())
		if row == "" {
			continue
		}
		p, err := parseRow(row, ecol, vcol)
		if err != nil {
			logger.Warn("skipping coefficient row", "table", src.Name, "line", line, "row", row, "err", err)
			skipped++
			continue
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("coefficient: read %q: %w", src.Name, err)
	}

	t, err := New(src, points, logger)
	if err != nil {
		return nil, err
	}
	t.skipped += skipped
	return t, nil
}

// ReadFile opens path and parses it with Parse. An empty src.Name is
// replaced with path.
func ReadFile(path string, src Source, logger *slog.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("coefficient: %w", err)
	}
	defer f.Close()
	if src.Name == "" {
		src.Name = path
	}
	return Parse(f, src, logger)
}

func parseRow(row string, ecol, vcol int) (Point, error) {
	fields := strings.FieldsFunc(row, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if ecol >= len(fields) || vcol >= len(fields) {
		return Point{}, fmt.Errorf("want columns %d and %d, row has %d", ecol, vcol, len(fields))
	}
	e, err := strconv.ParseFloat(fields[ecol], 64)
	if err != nil {
		return Point{}, err
	}
	v, err := strconv.ParseFloat(fields[vcol], 64)
	if err != nil {
		return Point{}, err
	}
	if !positive(e) || !positive(v) {
		return Point{}, fmt.Errorf("energy %g and value %g must be finite and > 0", e, v)
	}
	return Point{Energy: e, Value: v}, nil
}
