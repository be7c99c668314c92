package parse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tidbyt.dev/gtfsview/model"
)

// A Source opens the files of a feed by name. A missing file is
// reported with an error matching fs.ErrNotExist.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

type fsSource struct {
	fsys fs.FS
}

// FS reads feed files from the root of fsys, e.g. os.DirFS(dir).
func FS(fsys fs.FS) Source {
	return fsSource{fsys: fsys}
}

func (s fsSource) Open(name string) (io.ReadCloser, error) {
	return s.fsys.Open(name)
}

type zipSource struct {
	files map[string]*zip.File
}

// Zip reads feed files from a zip archive held in buf.
func Zip(buf []byte) (Source, error) {
	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("unzipping: %w", err)
	}

	s := zipSource{files: map[string]*zip.File{}}
	for _, f := range r.File {
		// There should not be any subdirectories. But, some
		// agencies don't care.
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		s.files[path[len(path)-1]] = f
	}

	return s, nil
}

func (s zipSource) Open(name string) (io.ReadCloser, error) {
	f, found := s.files[name]
	if !found {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f.Open()
}

type Options struct {
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Maximum number of tables decoded concurrently. Zero or
	// less means no limit.
	Workers int

	// Optional.
	Metrics *Metrics
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type tableResult struct {
	found  bool
	assign func(*model.Tables)
}

// Load decodes every table in the Catalog from src. Tables are
// decoded independently, possibly in parallel, and merged only once
// all of them succeed. Any failure fails the whole load.
func Load(src Source, opts Options) (*model.Tables, error) {
	logger := opts.logger()

	results := make([]tableResult, len(Catalog))

	var g errgroup.Group
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, d := range Catalog {
		i, d := i, d
		g.Go(func() error {
			found, assign, err := loadTable(src, d, logger, opts.Metrics)
			if err != nil {
				return err
			}
			results[i] = tableResult{found: found, assign: assign}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	foundCalendar := false
	for i, d := range Catalog {
		if d.File == CalendarTable.Schema.Table || d.File == CalendarDateTable.Schema.Table {
			foundCalendar = foundCalendar || results[i].found
		}
	}
	if !foundCalendar {
		return nil, errors.Wrap(model.ErrMissingFile, "calendar.txt and calendar_dates.txt")
	}

	tables := &model.Tables{}
	for _, r := range results {
		if r.assign != nil {
			r.assign(tables)
		}
	}

	return tables, nil
}

func loadTable(src Source, d Descriptor, logger *zap.Logger, metrics *Metrics) (bool, func(*model.Tables), error) {
	rc, err := src.Open(d.File)
	if errors.Is(err, fs.ErrNotExist) {
		if d.Required {
			return false, nil, errors.Wrap(model.ErrMissingFile, d.File)
		}
		logger.Debug("skipping optional file", zap.String("file", d.File))
		return false, nil, nil
	}
	if err != nil {
		return false, nil, errors.Wrapf(err, "opening %s", d.File)
	}
	defer rc.Close()

	logger.Debug("loading file", zap.String("file", d.File))
	start := time.Now()

	rows, assign, err := d.decode(rc)
	elapsed := time.Since(start)
	metrics.observe(d.File, rows, elapsed, err)
	if err != nil {
		logger.Warn("failed loading file", zap.String("file", d.File), zap.Error(err))
		return false, nil, err
	}

	logger.Info(
		"loaded file",
		zap.String("file", d.File),
		zap.Int("rows", rows),
		zap.Duration("duration", elapsed),
	)

	return true, assign, nil
}
