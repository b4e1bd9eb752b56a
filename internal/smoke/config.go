// Package smoke probes a running gateway: the status route and, optionally,
// one sample generation per catalog route.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the gateway
	Timeout  time.Duration // Per-request timeout
	Workers  int           // Concurrent generation requests
	Generate bool          // Send sample payloads to the generation routes
	Routes   []string      // Route names to exercise; empty means all
	Verbose  bool          // Log every response body
}

// Envelope is the gateway's response body.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Result is the outcome of one request.
type Result struct {
	Name     string
	Path     string
	Status   int
	Message  string
	Duration time.Duration
	Err      error
}

// OK reports whether the request got a 2xx answer.
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Report collects the results of a run.
type Report struct {
	Status    Result
	Routes    []Result
	StartTime time.Time
	Duration  time.Duration
}

// Failed counts failed route results.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Routes {
		if !res.OK() {
			n++
		}
	}
	return n
}
