package web2pdf

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Paper width presets.
const (
	PaperA4     = "a4"
	PaperLetter = "letter"
)

// Paper widths in inches at Chrome's 96 px/in reference.
const (
	paperWidthA4     = 8.27
	paperWidthLetter = 8.5
)

// Margin bounds in inches.
const (
	MinMargin     = 0.0
	MaxMargin     = 3.0
	DefaultMargin = 0.4
)

// CaptureSettings configures how a single page is rendered to PDF.
type CaptureSettings struct {
	Width           string        // "a4" or "letter"
	MarginInches    float64       // uniform margin on all four sides
	MinHeightInches float64       // lower clamp for the computed paper height
	MaxHeightInches float64       // upper clamp for the computed paper height
	SettleDelay     time.Duration // wait after load for lazy content
}

// DefaultCaptureSettings returns capture settings matching an A4-width
// tall page with a 0.4in margin.
func DefaultCaptureSettings() CaptureSettings {
	return CaptureSettings{
		Width:           PaperA4,
		MarginInches:    DefaultMargin,
		MinHeightInches: 1.0,
		MaxHeightInches: 200.0,
		SettleDelay:     1500 * time.Millisecond,
	}
}

// widthInches maps a validated width preset to inches.
func (c CaptureSettings) widthInches() float64 {
	if strings.ToLower(c.Width) == PaperLetter {
		return paperWidthLetter
	}
	return paperWidthA4
}

// Validate checks that capture settings are consistent.
func (c CaptureSettings) Validate() error {
	switch strings.ToLower(c.Width) {
	case PaperA4, PaperLetter:
	default:
		return fmt.Errorf("%w: %q (must be a4 or letter)", ErrInvalidPaperWidth, c.Width)
	}
	if c.MarginInches < MinMargin || c.MarginInches > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, c.MarginInches, MinMargin, MaxMargin)
	}
	if c.MinHeightInches <= 0 || c.MaxHeightInches < c.MinHeightInches {
		return fmt.Errorf("%w: [%.2f, %.2f]", ErrInvalidHeightRange, c.MinHeightInches, c.MaxHeightInches)
	}
	return nil
}

// PacingSettings configures politeness delays and the per-URL retry policy.
type PacingSettings struct {
	MinWait     time.Duration // lower bound of the random pre-navigation delay
	MaxWait     time.Duration // upper bound of the random pre-navigation delay
	BurstSize   int           // URLs processed before a cooldown
	Cooldown    time.Duration // pause inserted after each burst
	Retries     int           // attempts per URL before skipping it
	BackoffBase time.Duration // first backoff; doubles on each failure
}

// DefaultPacingSettings returns the pacing used against rate-limited sites:
// 2-5s jitter, a 1s cooldown every 10 pages, and 3 attempts backing off
// from 3s.
func DefaultPacingSettings() PacingSettings {
	return PacingSettings{
		MinWait:     2 * time.Second,
		MaxWait:     5 * time.Second,
		BurstSize:   10,
		Cooldown:    time.Second,
		Retries:     3,
		BackoffBase: 3 * time.Second,
	}
}

// Validate checks that pacing settings are consistent.
func (p PacingSettings) Validate() error {
	if p.MinWait < 0 || p.MaxWait < p.MinWait {
		return fmt.Errorf("%w: [%s, %s]", ErrInvalidWaitRange, p.MinWait, p.MaxWait)
	}
	if p.BurstSize < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidBurstSize, p.BurstSize)
	}
	if p.Retries < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidRetries, p.Retries)
	}
	return nil
}

// ChallengeSettings configures the manual-intervention wait for interstitial
// challenge pages. The probe only runs on headful sessions: a headless run
// has nobody to solve the challenge and will capture the challenge page
// itself.
type ChallengeSettings struct {
	Timeout      time.Duration // max wait for a human to clear the challenge
	PollInterval time.Duration // how often to re-probe for the markers
}

// DefaultChallengeSettings returns a 10 minute wait polling every 3 seconds.
func DefaultChallengeSettings() ChallengeSettings {
	return ChallengeSettings{
		Timeout:      10 * time.Minute,
		PollInterval: 3 * time.Second,
	}
}

// Desktop user agent presented by the launched browser.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// SessionOptions configures the shared browser session.
type SessionOptions struct {
	Headful     bool   // show the browser window (required for manual challenge solving)
	UserDataDir string // persistent Chrome profile to reuse cookies/logins
	UserAgent   string // empty = defaultUserAgent
	WindowW     int    // viewport width; large to reduce reflow surprises
	WindowH     int    // viewport height
}

// DefaultSessionOptions returns a headless session with a 1280x2000 window.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		UserAgent: defaultUserAgent,
		WindowW:   1280,
		WindowH:   2000,
	}
}

// Input holds the parameters of one capture run.
type Input struct {
	URLs       []string // ordered targets; order determines numbering and merge order
	OutputDir  string   // directory for per-page PDFs
	MergedPath string   // path of the merged document
}

// Artifact is one successfully captured page.
type Artifact struct {
	Index int    // 1-based position in the URL sequence
	Name  string // filesystem-safe file name
	Path  string // location of the single-page PDF
}

// Result summarizes a completed run.
type Result struct {
	Artifacts  []Artifact
	MergedPath string
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	capture   CaptureSettings
	pacing    PacingSettings
	challenge ChallengeSettings
	session   SessionOptions
	timeout   time.Duration
}

// defaultTimeout bounds individual browser operations (navigation, printing).
const defaultTimeout = 30 * time.Second

// WithCapture sets page capture settings.
func WithCapture(c CaptureSettings) Option {
	return func(s *Service) { s.cfg.capture = c }
}

// WithPacing sets pacing and retry settings.
func WithPacing(p PacingSettings) Option {
	return func(s *Service) { s.cfg.pacing = p }
}

// WithChallenge sets interstitial challenge wait settings.
func WithChallenge(c ChallengeSettings) Option {
	return func(s *Service) { s.cfg.challenge = c }
}

// WithSession sets browser session options.
func WithSession(o SessionOptions) Option {
	return func(s *Service) { s.cfg.session = o }
}

// WithTimeout sets the per-operation browser timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("web2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) { s.cfg.timeout = d }
}

// WithProgress redirects progress and failure reporting.
func WithProgress(stdout, stderr io.Writer) Option {
	return func(s *Service) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// withDriver injects a page driver (e.g., by tests).
func withDriver(d pageDriver) Option {
	return func(s *Service) { s.drv = d }
}

// withMerger injects a PDF merger (e.g., by tests).
func withMerger(m pdfMerger) Option {
	return func(s *Service) { s.merger = m }
}

// withSleep injects the blocking sleep (e.g., by tests).
func withSleep(fn sleepFunc) Option {
	return func(s *Service) { s.sleep = fn }
}

// withRand injects the pacing jitter source (e.g., by tests).
func withRand(fn func() float64) Option {
	return func(s *Service) { s.randFloat = fn }
}
