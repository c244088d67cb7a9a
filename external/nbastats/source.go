// Package nbastats reads team game log exports in the shape produced by the
// stats.nba.com game finder endpoints: either a flat JSON array, the raw
// {"resultSets": [{"headers": [...], "rowSet": [...]}]} envelope, or CSV.
package nbastats

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/riskibarqy/game-features/internal/domain/gamelog"
)

var (
	ErrUnsupportedFormat = crerr.New("unsupported game log format")
	ErrMissingColumn     = crerr.New("game log column missing")
)

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type envelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

// ReadFile picks a decoder by extension.
func ReadFile(ctx context.Context, path string) ([]gamelog.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var decode func(io.Reader) ([]gamelog.Row, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		decode = DecodeJSON
	case ".csv":
		decode = DecodeCSV
	default:
		return nil, crerr.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open game log %s", path)
	}
	defer f.Close()

	rows, err := decode(f)
	if err != nil {
		return nil, crerr.Wrapf(err, "decode game log %s", path)
	}
	return rows, nil
}

func DecodeJSON(r io.Reader) ([]gamelog.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, crerr.Wrap(err, "read json")
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []map[string]any
		if err := sonic.Unmarshal(trimmed, &items); err != nil {
			return nil, crerr.Wrap(err, "decode json array")
		}
		if len(items) == 0 {
			return nil, nil
		}
		if err := requireColumns(keysOf(items[0])); err != nil {
			return nil, err
		}
		rows := make([]gamelog.Row, 0, len(items))
		for _, item := range items {
			rows = append(rows, rowFromFields(normalizeKeys(item)))
		}
		return rows, nil
	}

	var wrapped envelope
	if err := sonic.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, crerr.Wrap(err, "decode json envelope")
	}
	if len(wrapped.ResultSets) == 0 {
		return nil, crerr.Wrap(ErrUnsupportedFormat, "json object without resultSets")
	}

	set := wrapped.ResultSets[0]
	if err := requireColumns(set.Headers); err != nil {
		return nil, err
	}
	rows := make([]gamelog.Row, 0, len(set.RowSet))
	for _, values := range set.RowSet {
		fields := make(map[string]any, len(set.Headers))
		for i, header := range set.Headers {
			if i < len(values) {
				fields[normalizeKey(header)] = values[i]
			}
		}
		rows = append(rows, rowFromFields(fields))
	}
	return rows, nil
}

// DecodeCSV reads every column as text; typing happens in rowFromFields so
// ids like 0022300001 keep their leading zeros.
func DecodeCSV(r io.Reader) ([]gamelog.Row, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, crerr.Wrap(df.Err, "read csv")
	}

	names := df.Names()
	if err := requireColumns(names); err != nil {
		return nil, err
	}

	records := df.Records()
	rows := make([]gamelog.Row, 0, len(records))
	for _, record := range records[1:] {
		fields := make(map[string]any, len(names))
		for i, name := range names {
			fields[normalizeKey(name)] = record[i]
		}
		rows = append(rows, rowFromFields(fields))
	}
	return rows, nil
}

func requireColumns(columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		present[normalizeKey(column)] = struct{}{}
	}

	var missing []string
	for _, aliases := range requiredColumns {
		found := false
		for _, alias := range aliases {
			if _, ok := present[alias]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, aliases[0])
		}
	}
	if len(missing) > 0 {
		return crerr.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}
	return nil
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	return out
}
