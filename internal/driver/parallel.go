package driver

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"

	"kernelabi/internal/diag"
	"kernelabi/internal/modfile"
	"kernelabi/internal/trace"
)

// DefaultJobs is the number of physical cores, or GOMAXPROCS when the
// host does not report it.
func DefaultJobs() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return min(n, runtime.GOMAXPROCS(0))
}

// ListModules returns the sorted module descriptions under dir.
func ListModules(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// RunAll runs every file through the pipeline with at most jobs modules
// in flight. Results keep the order of paths. A module that fails to
// load or run records the failure in its result; only cancellation
// stops the whole run.
func (s *Session) RunAll(ctx context.Context, paths []string, jobs int) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = DefaultJobs()
	}
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "run")
	defer span.End("")
	span.WithExtra("session", s.ID.String())

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.RunFile(gctx, path)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if res == nil {
				res = &Result{Path: path, Bag: diag.NewBag(s.maxDiagnostics())}
			}
			if err != nil {
				res.Err = err
				code := diag.UnknownCode
				var merr *modfile.Error
				if errors.As(err, &merr) || res.Module == nil {
					code = diag.IOLoadFailed
				}
				diag.ReportError(diag.NewBagReporter(res.Bag), code, diag.Loc{Inst: -1}, err.Error()).Emit()
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
