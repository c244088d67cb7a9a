// Package export writes the train/test feature tables and the run report to
// a local directory.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/riskibarqy/game-features/internal/domain/feature"
	"github.com/riskibarqy/game-features/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
)

const (
	TrainFile  = "train.csv"
	TestFile   = "test.csv"
	ReportFile = "report.json"
)

// Paths lists the files written by WriteAll.
type Paths struct {
	Train  string
	Test   string
	Report string
}

type Writer struct {
	dir    string
	logger *logging.Logger
}

func NewWriter(dir string, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, logger: logger.Named("export")}
}

// Frame lays rows out in feature.Columns order. Every column is a string
// series so floats keep their shortest round-trip form.
func Frame(rows []feature.GameRow) dataframe.DataFrame {
	columns := feature.Columns()
	values := make([][]string, len(columns))
	for i := range values {
		values[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c, value := range row.Record() {
			values[c][r] = value
		}
	}

	cols := make([]series.Series, len(columns))
	for i, name := range columns {
		cols[i] = series.New(values[i], series.String, name)
	}
	return dataframe.New(cols...)
}

func (w *Writer) WriteTable(ctx context.Context, name string, rows []feature.GameRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	df := Frame(rows)
	if df.Err != nil {
		return "", fmt.Errorf("build %s frame: %w", name, df.Err)
	}

	path, err := w.writeFile(name, func(out io.Writer) error {
		return df.WriteCSV(out)
	})
	if err != nil {
		return "", err
	}
	w.logger.InfoContext(ctx, "table written", "path", path, "rows", len(rows))
	return path, nil
}

func (w *Writer) WriteReport(ctx context.Context, report any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := w.writeFile(ReportFile, func(out io.Writer) error {
		encoder := sonic.ConfigDefault.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	})
	if err != nil {
		return "", err
	}
	w.logger.InfoContext(ctx, "report written", "path", path)
	return path, nil
}

// WriteAll writes both tables and the report concurrently; the first failure
// cancels the rest.
func (w *Writer) WriteAll(ctx context.Context, split feature.Split, report any) (Paths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir %s: %w", w.dir, err)
	}

	var paths Paths
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		path, err := w.WriteTable(ctx, TrainFile, split.Train)
		paths.Train = path
		return err
	})
	p.Go(func(ctx context.Context) error {
		path, err := w.WriteTable(ctx, TestFile, split.Test)
		paths.Test = path
		return err
	})
	p.Go(func(ctx context.Context) error {
		path, err := w.WriteReport(ctx, report)
		paths.Report = path
		return err
	})
	if err := p.Wait(); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

// writeFile renders into a pooled buffer and renames a temp file into place,
// so a failed run never leaves a truncated table behind.
func (w *Writer) writeFile(name string, render func(io.Writer) error) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := render(buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", w.dir, err)
	}
	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}
