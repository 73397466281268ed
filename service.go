package web2pdf

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-web2pdf/internal/fileutil"
)

// sleepFunc blocks for d or until ctx is canceled, reporting whether the
// full duration elapsed. Injectable so tests can record durations.
type sleepFunc func(ctx context.Context, d time.Duration) bool

// sleepContext is the production sleepFunc.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// Service drives the capture-retry-merge pipeline: it owns the single shared
// browser session, paces requests, retries transient browser failures with
// doubling backoff, and merges the surviving artifacts in sequence order.
type Service struct {
	cfg       serviceConfig
	drv       pageDriver
	merger    pdfMerger
	sleep     sleepFunc
	randFloat func() float64
	stdout    io.Writer
	stderr    io.Writer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithPacing, WithSession).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			capture:   DefaultCaptureSettings(),
			pacing:    DefaultPacingSettings(),
			challenge: DefaultChallengeSettings(),
			session:   DefaultSessionOptions(),
			timeout:   defaultTimeout,
		},
		sleep:     sleepContext,
		randFloat: rand.Float64,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create driver and merger if not injected (e.g., by tests)
	if s.drv == nil {
		s.drv = newRodSession(s.cfg.session, s.cfg.timeout)
	}
	if s.merger == nil {
		s.merger = pdfcpuMerger{}
	}

	return s
}

// Run captures every URL of the input in order and merges the successful
// captures into input.MergedPath. Individual URLs whose retries exhaust are
// skipped; the run fails only on input errors, non-browser errors, or when
// nothing was captured at all. The browser session is released on every
// exit path.
func (s *Service) Run(ctx context.Context, input Input) (*Result, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	if err := fileutil.EnsureDir(input.OutputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputDir, err)
	}

	// Session released even when a terminal error propagates; Close is
	// idempotent so Service.Close stays safe afterwards.
	defer func() { _ = s.drv.Close() }()

	engine := &captureEngine{drv: s.drv, settings: s.cfg.capture}
	watcher := &challengeWatcher{
		drv:      s.drv,
		settings: s.cfg.challenge,
		sleep:    s.sleep,
		now:      time.Now,
		stderr:   s.stderr,
	}

	total := len(input.URLs)
	var artifacts []Artifact

	for i, target := range input.URLs {
		ordinal := i + 1
		name := artifactName(ordinal, target)
		dest := filepath.Join(input.OutputDir, name)
		fmt.Fprintf(s.stdout, "[%d/%d] printing -> %s\n", ordinal, total, name)

		// Random human-ish delay before each navigation
		if !s.sleep(ctx, s.pacingDelay()) {
			return nil, ctx.Err()
		}

		artifact, err := s.captureWithRetry(ctx, engine, watcher, target, dest, ordinal, name)
		if err != nil {
			return nil, err
		}
		if artifact != nil {
			artifacts = append(artifacts, *artifact)
		}

		// Cooldown after bursts, except after the final URL
		if ordinal%s.cfg.pacing.BurstSize == 0 && ordinal < total {
			fmt.Fprintf(s.stdout, "cooling down for %s\n", s.cfg.pacing.Cooldown)
			if !s.sleep(ctx, s.cfg.pacing.Cooldown) {
				return nil, ctx.Err()
			}
		}
	}

	if len(artifacts) == 0 {
		return nil, ErrNothingToMerge
	}

	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}
	if err := s.merger.Merge(paths, input.MergedPath); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.stdout, "merged PDF -> %s\n", input.MergedPath)
	fmt.Fprintf(s.stdout, "individual PDFs in -> %s\n", input.OutputDir)

	return &Result{Artifacts: artifacts, MergedPath: input.MergedPath}, nil
}

// Close releases the browser session. Safe to call after Run.
func (s *Service) Close() error {
	if s.drv != nil {
		return s.drv.Close()
	}
	return nil
}

// captureWithRetry attempts one URL up to the retry ceiling. A nil artifact
// with nil error means the URL was skipped after exhausting retries; only
// non-browser errors and cancellation are returned.
func (s *Service) captureWithRetry(ctx context.Context, engine *captureEngine, watcher *challengeWatcher, target, dest string, ordinal int, name string) (*Artifact, error) {
	backoff := s.cfg.pacing.BackoffBase

	for attempt := 1; attempt <= s.cfg.pacing.Retries; attempt++ {
		err := s.attempt(ctx, engine, watcher, target, dest)
		if err == nil {
			return &Artifact{Index: ordinal, Name: name, Path: dest}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isBrowserError(err) {
			return nil, err
		}

		fmt.Fprintf(s.stderr, "  ! attempt %d failed: %v; backing off %s\n", attempt, err, backoff)
		if !s.sleep(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff *= 2
	}

	fmt.Fprintf(s.stderr, "  ! giving up on %s after %d attempts\n", target, s.cfg.pacing.Retries)
	return nil, nil
}

// attempt runs one capture attempt: navigate, challenge wait (headful only),
// settle, capture without further navigation delay.
func (s *Service) attempt(ctx context.Context, engine *captureEngine, watcher *challengeWatcher, target, dest string) error {
	if err := s.drv.Navigate(target); err != nil {
		return err
	}

	if s.cfg.session.Headful && watcher.WaitForClear(ctx) {
		// After the challenge is solved, reload to get the real content
		if err := s.drv.Reload(); err != nil {
			return err
		}
	}

	// Settle with a 1s floor so lazy images get a chance even when the
	// configured delay is tiny
	settle := s.cfg.capture.SettleDelay
	if settle < time.Second {
		settle = time.Second
	}
	if !s.sleep(ctx, settle) {
		return ctx.Err()
	}

	return engine.Capture(ctx, dest)
}

// pacingDelay draws a uniform random delay from [MinWait, MaxWait].
func (s *Service) pacingDelay() time.Duration {
	minWait, maxWait := s.cfg.pacing.MinWait, s.cfg.pacing.MaxWait
	if maxWait <= minWait {
		return minWait
	}
	return minWait + time.Duration(s.randFloat()*float64(maxWait-minWait))
}

// validateInput checks the run input and settings.
func (s *Service) validateInput(input Input) error {
	if len(input.URLs) == 0 {
		return ErrNoURLs
	}
	if input.OutputDir == "" {
		return ErrNoOutputDir
	}
	if input.MergedPath == "" {
		return ErrNoMergedPath
	}
	if err := s.cfg.capture.Validate(); err != nil {
		return err
	}
	if err := s.cfg.pacing.Validate(); err != nil {
		return err
	}
	return nil
}
