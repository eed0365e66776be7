// Package status probes the liveness of the console's remote dependencies.
package status

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
)

type Status int

const (
	Loading Status = iota
	OK
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Error:
		return "error"
	default:
		return "loading"
	}
}

// Target is one probed dependency.
type Target struct {
	Name string
	URL  string
}

// Result is the settled state of one probe.
type Result struct {
	Name   string
	Status Status
	// Detail is the HTTP status line or the transport error text.
	Detail string
}

// Check issues one GET against target. Any 2xx is OK; everything else,
// including a transport failure, is Error. It never returns Loading.
func Check(ctx context.Context, client *http.Client, target Target) Result {
	if client == nil {
		client = http.DefaultClient
	}
	result := Result{Name: target.Name, Status: Error}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	res, err := client.Do(req)
	if err != nil {
		result.Detail = err.Error()
		slog.Debug("health probe failed", "service", target.Name, "url", target.URL, "error", err)
		return result
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	result.Detail = res.Status
	if res.StatusCode/100 == 2 {
		result.Status = OK
	}
	slog.Debug("health probe settled", "service", target.Name, "status", result.Status.String(), "http", res.StatusCode)
	return result
}

// Report holds settled results in target order.
type Report []Result

// Healthy reports whether every probe settled OK.
func (r Report) Healthy() bool {
	for _, res := range r {
		if res.Status != OK {
			return false
		}
	}
	return true
}

// CheckAll probes every target concurrently and waits for all of them.
func CheckAll(ctx context.Context, client *http.Client, targets []Target) Report {
	report := make(Report, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			report[i] = Check(gctx, client, target)
			return nil
		})
	}
	_ = g.Wait()
	return report
}
