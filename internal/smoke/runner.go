package smoke

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/okian/retina/internal/domain/catalog"
	"github.com/okian/retina/pkg/logger"
)

// Run probes the gateway at cfg.BaseURL and writes a summary to out. It fails
// only when the status probe fails; generation failures are reported.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Report, error) {
	log := logger.Get().Named("smoke")
	report := &Report{StartTime: time.Now()}
	client := newHTTPClient(cfg.Timeout)
	base := strings.TrimRight(cfg.BaseURL, "/")

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", base),
		logger.Any("generate", cfg.Generate),
		logger.Int("workers", cfg.Workers))

	report.Status = call(ctx, func() (int, Envelope, error) {
		return client.Get(ctx, base+"/")
	}, "status", "/")
	if !report.Status.OK() {
		report.Duration = time.Since(report.StartTime)
		writeReport(out, report)
		return report, fmt.Errorf("%w: %s", ErrProbeFailed, describe(report.Status))
	}

	if cfg.Generate {
		routes, err := selectRoutes(cfg.Routes)
		if err != nil {
			return report, err
		}
		report.Routes = generate(ctx, client, base, routes, cfg.Workers)
		for _, res := range report.Routes {
			if cfg.Verbose || !res.OK() {
				log.Info(ctx, "route result",
					logger.String("route", res.Path),
					logger.Int("status", res.Status),
					logger.String("message", res.Message))
			}
		}
	}

	report.Duration = time.Since(report.StartTime)
	writeReport(out, report)
	return report, nil
}

// selectRoutes resolves route names against the catalog.
func selectRoutes(names []string) ([]catalog.Route, error) {
	all := catalog.Routes()
	if len(names) == 0 {
		return all, nil
	}
	var picked []catalog.Route
	for _, name := range names {
		i := slices.IndexFunc(all, func(r catalog.Route) bool { return r.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
		}
		picked = append(picked, all[i])
	}
	return picked, nil
}

// generate posts a sample to every route using a bounded worker pool.
func generate(ctx context.Context, client *HTTPClient, base string, routes []catalog.Route, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(routes))
	jobs := make(chan int, len(routes))
	for i := range routes {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r := routes[i]
				if ctx.Err() != nil {
					results[i] = Result{Name: r.Name, Path: r.Path, Err: ctx.Err()}
					continue
				}
				results[i] = call(ctx, func() (int, Envelope, error) {
					return client.Post(ctx, base+r.Path, Sample(r))
				}, r.Name, r.Path)
			}
		}()
	}
	wg.Wait()
	return results
}

func call(_ context.Context, do func() (int, Envelope, error), name, path string) Result {
	start := time.Now()
	status, env, err := do()
	return Result{
		Name:     name,
		Path:     path,
		Status:   status,
		Message:  env.Message,
		Duration: time.Since(start),
		Err:      err,
	}
}

func describe(r Result) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return fmt.Sprintf("HTTP %d %q", r.Status, r.Message)
}

func writeReport(out io.Writer, r *Report) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tSTATUS\tMESSAGE\tDURATION")
	rows := append([]Result{r.Status}, r.Routes...)
	for _, res := range rows {
		status := fmt.Sprint(res.Status)
		msg := res.Message
		if res.Err != nil {
			status, msg = "ERR", res.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Path, status, msg, res.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "\n%d routes, %d failed, %s total\n", len(r.Routes), r.Failed(), r.Duration.Round(time.Millisecond))
}
