package web2pdf

// Notes:
// - Tests Service.Run with a mocked page driver and merger to isolate the
//   pacing/retry/merge orchestration from the real browser
// - The injected sleep records every requested duration so pacing, settle,
//   backoff, and cooldown delays can be asserted exactly
// - Internal test options (withDriver, withMerger, withSleep, withRand)
//   enable dependency injection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type fakeDriver struct {
	navigated []string
	reloads   int
	emulated  int
	printReqs []*proto.PagePrintToPDF
	closed    int

	navigateErrs  []error // consumed per Navigate call; nil once exhausted
	reloadErr     error
	emulateErr    error
	heightPx      float64 // 0 means 960
	heightErr     error
	pdf           []byte
	printErr      error
	hasAnySeq     []bool // consumed per HasAny call
	hasAnyDefault bool   // returned once hasAnySeq is exhausted
	hasAnyErr     error
}

func (d *fakeDriver) Navigate(url string) error {
	d.navigated = append(d.navigated, url)
	if len(d.navigateErrs) > 0 {
		err := d.navigateErrs[0]
		d.navigateErrs = d.navigateErrs[1:]
		return err
	}
	return nil
}

func (d *fakeDriver) Reload() error {
	d.reloads++
	return d.reloadErr
}

func (d *fakeDriver) EmulateScreenMedia() error {
	d.emulated++
	return d.emulateErr
}

func (d *fakeDriver) ContentHeightPx() (float64, error) {
	if d.heightErr != nil {
		return 0, d.heightErr
	}
	if d.heightPx == 0 {
		return 960, nil
	}
	return d.heightPx, nil
}

func (d *fakeDriver) PrintToPDF(req *proto.PagePrintToPDF) ([]byte, error) {
	d.printReqs = append(d.printReqs, req)
	if d.printErr != nil {
		return nil, d.printErr
	}
	if d.pdf != nil {
		return d.pdf, nil
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (d *fakeDriver) HasAny(selectors ...string) (bool, error) {
	if d.hasAnyErr != nil {
		return false, d.hasAnyErr
	}
	if len(d.hasAnySeq) > 0 {
		v := d.hasAnySeq[0]
		d.hasAnySeq = d.hasAnySeq[1:]
		return v, nil
	}
	return d.hasAnyDefault, nil
}

func (d *fakeDriver) Close() error {
	d.closed++
	return nil
}

type fakeMerger struct {
	called bool
	inputs []string
	output string
	err    error
}

func (m *fakeMerger) Merge(inputs []string, output string) error {
	m.called = true
	m.inputs = inputs
	m.output = output
	return m.err
}

// recordSleep returns a sleepFunc that appends each requested duration.
func recordSleep(durations *[]time.Duration) sleepFunc {
	return func(ctx context.Context, d time.Duration) bool {
		*durations = append(*durations, d)
		return true
	}
}

// testPacing keeps delays tiny and deterministic for orchestration tests.
func testPacing() PacingSettings {
	return PacingSettings{
		MinWait:     10 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		BurstSize:   10,
		Cooldown:    7 * time.Millisecond,
		Retries:     3,
		BackoffBase: 3 * time.Millisecond,
	}
}

func newTestService(drv *fakeDriver, merger *fakeMerger, sleeps *[]time.Duration, opts ...Option) *Service {
	base := []Option{
		withDriver(drv),
		withMerger(merger),
		withSleep(recordSleep(sleeps)),
		withRand(func() float64 { return 0 }),
		WithPacing(testPacing()),
		WithProgress(io.Discard, io.Discard),
	}
	return New(append(base, opts...)...)
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestServiceRunSuccess(t *testing.T) {
	drv := &fakeDriver{pdf: []byte("%PDF-1.4 test content")}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	dir := t.TempDir()
	merged := filepath.Join(dir, "merged.pdf")
	svc := newTestService(drv, merger, &sleeps)

	urls := []string{
		"https://scholar.google.com/scholar?q=x&start=0",
		"https://scholar.google.com/scholar?q=x&start=10",
	}
	result, err := svc.Run(context.Background(), Input{
		URLs:       urls,
		OutputDir:  dir,
		MergedPath: merged,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(result.Artifacts))
	}
	for i, a := range result.Artifacts {
		if a.Index != i+1 {
			t.Errorf("artifact %d: Index = %d, want %d", i, a.Index, i+1)
		}
		if !strings.HasPrefix(a.Name, "00") || !strings.HasSuffix(a.Name, ".pdf") {
			t.Errorf("artifact %d: unexpected name %q", i, a.Name)
		}
		data, readErr := os.ReadFile(a.Path)
		if readErr != nil {
			t.Fatalf("artifact %d not written: %v", i, readErr)
		}
		if !bytes.Equal(data, drv.pdf) {
			t.Errorf("artifact %d: wrong content", i)
		}
	}

	if !merger.called {
		t.Fatal("merger was not called")
	}
	if merger.output != merged {
		t.Errorf("merge output = %q, want %q", merger.output, merged)
	}
	if len(merger.inputs) != 2 {
		t.Fatalf("merge got %d inputs, want 2", len(merger.inputs))
	}
	for i, p := range merger.inputs {
		if p != result.Artifacts[i].Path {
			t.Errorf("merge input %d = %q, want %q", i, p, result.Artifacts[i].Path)
		}
	}

	if len(drv.navigated) != 2 || drv.navigated[0] != urls[0] || drv.navigated[1] != urls[1] {
		t.Errorf("navigated = %v, want %v in order", drv.navigated, urls)
	}
}

func TestServiceRunRetryBackoff(t *testing.T) {
	drv := &fakeDriver{navigateErrs: []error{
		wrapBrowser(ErrPageLoad), wrapBrowser(ErrPageLoad), wrapBrowser(ErrPageLoad),
	}}
	merger := &fakeMerger{}
	var sleeps []time.Duration
	var stderr bytes.Buffer

	svc := newTestService(drv, merger, &sleeps, WithProgress(io.Discard, &stderr))

	_, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  t.TempDir(),
		MergedPath: "merged.pdf",
	})
	if !errors.Is(err, ErrNothingToMerge) {
		t.Fatalf("Run() error = %v, want ErrNothingToMerge", err)
	}

	if len(drv.navigated) != 3 {
		t.Errorf("got %d navigation attempts, want 3", len(drv.navigated))
	}

	// One pacing delay, then a doubling backoff after every failed attempt
	want := []time.Duration{
		10 * time.Millisecond,
		3 * time.Millisecond,
		6 * time.Millisecond,
		12 * time.Millisecond,
	}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, sleeps[i], want[i])
		}
	}

	if merger.called {
		t.Error("merger called despite no artifacts")
	}
	if !strings.Contains(stderr.String(), "giving up") {
		t.Errorf("stderr missing skip notice: %q", stderr.String())
	}
}

func TestServiceRunSkipContinuesSequence(t *testing.T) {
	drv := &fakeDriver{navigateErrs: []error{
		wrapBrowser(ErrPageLoad), wrapBrowser(ErrPageLoad), wrapBrowser(ErrPageLoad),
	}}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps)

	result, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com/bad", "https://example.com/good"},
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(result.Artifacts))
	}
	if result.Artifacts[0].Index != 2 {
		t.Errorf("surviving artifact Index = %d, want 2", result.Artifacts[0].Index)
	}
	if len(merger.inputs) != 1 {
		t.Errorf("merge got %d inputs, want 1", len(merger.inputs))
	}
}

func TestServiceRunNonBrowserErrorIsTerminal(t *testing.T) {
	boom := errors.New("disk on fire")
	drv := &fakeDriver{navigateErrs: []error{boom}}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	svc := newTestService(drv, merger, &sleeps)

	_, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  t.TempDir(),
		MergedPath: "merged.pdf",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if len(drv.navigated) != 1 {
		t.Errorf("got %d attempts, want 1 (no retry on non-browser errors)", len(drv.navigated))
	}
	if merger.called {
		t.Error("merger called after terminal error")
	}
}

func TestServiceRunBurstCooldown(t *testing.T) {
	drv := &fakeDriver{}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	pacing := testPacing()
	pacing.BurstSize = 2
	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps, WithPacing(pacing))

	urls := []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
		"https://example.com/4",
	}
	if _, err := svc.Run(context.Background(), Input{
		URLs:       urls,
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Cooldown fires after the 2nd URL only: the 4th is the last one.
	var cooldowns int
	for _, d := range sleeps {
		if d == pacing.Cooldown {
			cooldowns++
		}
	}
	if cooldowns != 1 {
		t.Errorf("got %d cooldowns, want 1 (sleeps: %v)", cooldowns, sleeps)
	}
}

func TestServiceRunSettleFloor(t *testing.T) {
	tests := []struct {
		name   string
		settle time.Duration
		want   time.Duration
	}{
		{name: "below floor raised to 1s", settle: 100 * time.Millisecond, want: time.Second},
		{name: "above floor kept", settle: 1500 * time.Millisecond, want: 1500 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &fakeDriver{}
			merger := &fakeMerger{}
			var sleeps []time.Duration

			capture := DefaultCaptureSettings()
			capture.SettleDelay = tt.settle
			dir := t.TempDir()
			svc := newTestService(drv, merger, &sleeps, WithCapture(capture))

			if _, err := svc.Run(context.Background(), Input{
				URLs:       []string{"https://example.com"},
				OutputDir:  dir,
				MergedPath: filepath.Join(dir, "merged.pdf"),
			}); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			// Sleep sequence per URL: pacing delay, then settle.
			if len(sleeps) != 2 {
				t.Fatalf("sleeps = %v, want 2 entries", sleeps)
			}
			if sleeps[1] != tt.want {
				t.Errorf("settle sleep = %v, want %v", sleeps[1], tt.want)
			}
		})
	}
}

func TestServiceRunChallengeReload(t *testing.T) {
	drv := &fakeDriver{hasAnySeq: []bool{true, false}}
	merger := &fakeMerger{}
	var sleeps []time.Duration
	var stderr bytes.Buffer

	session := DefaultSessionOptions()
	session.Headful = true
	challenge := DefaultChallengeSettings()
	challenge.Timeout = time.Minute

	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps,
		WithSession(session),
		WithChallenge(challenge),
		WithProgress(io.Discard, &stderr),
	)

	if _, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if drv.reloads != 1 {
		t.Errorf("got %d reloads, want 1 after clearing the challenge", drv.reloads)
	}
	if !strings.Contains(stderr.String(), "challenge") {
		t.Errorf("stderr missing challenge notice: %q", stderr.String())
	}
}

func TestServiceRunHeadlessSkipsChallengeProbe(t *testing.T) {
	drv := &fakeDriver{hasAnyDefault: true}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps)

	if _, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if drv.reloads != 0 {
		t.Errorf("got %d reloads, want 0 on headless sessions", drv.reloads)
	}
}

func TestServiceRunCanceledContext(t *testing.T) {
	drv := &fakeDriver{}
	merger := &fakeMerger{}

	svc := New(
		withDriver(drv),
		withMerger(merger),
		WithPacing(testPacing()),
		WithProgress(io.Discard, io.Discard),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  t.TempDir(),
		MergedPath: "merged.pdf",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if merger.called {
		t.Error("merger called after cancellation")
	}
}

func TestServiceRunOutputDirBlocked(t *testing.T) {
	drv := &fakeDriver{}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newTestService(drv, merger, &sleeps)
	_, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  filepath.Join(blocker, "pages"),
		MergedPath: filepath.Join(dir, "merged.pdf"),
	})
	if !errors.Is(err, ErrCreateOutputDir) {
		t.Fatalf("Run() error = %v, want ErrCreateOutputDir", err)
	}
	if len(drv.navigated) != 0 {
		t.Error("driver used despite unusable output directory")
	}
}

func TestServiceRunClosesSession(t *testing.T) {
	drv := &fakeDriver{}
	merger := &fakeMerger{}
	var sleeps []time.Duration

	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps)

	if _, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if drv.closed == 0 {
		t.Error("session not closed after Run")
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Close() after Run error = %v", err)
	}
}

func TestServiceRunMergeFailure(t *testing.T) {
	drv := &fakeDriver{}
	merger := &fakeMerger{err: wrapMerge("corrupt input")}
	var sleeps []time.Duration

	dir := t.TempDir()
	svc := newTestService(drv, merger, &sleeps)

	_, err := svc.Run(context.Background(), Input{
		URLs:       []string{"https://example.com"},
		OutputDir:  dir,
		MergedPath: filepath.Join(dir, "merged.pdf"),
	})
	if !errors.Is(err, ErrMergePDF) {
		t.Fatalf("Run() error = %v, want ErrMergePDF", err)
	}
}

// ---------------------------------------------------------------------------
// Input Validation
// ---------------------------------------------------------------------------

func TestServiceRunValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		opts    []Option
		wantErr error
	}{
		{
			name:    "no URLs",
			input:   Input{OutputDir: "out", MergedPath: "m.pdf"},
			wantErr: ErrNoURLs,
		},
		{
			name:    "no output dir",
			input:   Input{URLs: []string{"https://a"}, MergedPath: "m.pdf"},
			wantErr: ErrNoOutputDir,
		},
		{
			name:    "no merged path",
			input:   Input{URLs: []string{"https://a"}, OutputDir: "out"},
			wantErr: ErrNoMergedPath,
		},
		{
			name:  "invalid paper width",
			input: Input{URLs: []string{"https://a"}, OutputDir: "out", MergedPath: "m.pdf"},
			opts: []Option{WithCapture(CaptureSettings{
				Width: "tabloid", MarginInches: 0.4, MinHeightInches: 1, MaxHeightInches: 200,
			})},
			wantErr: ErrInvalidPaperWidth,
		},
		{
			name:  "invalid retries",
			input: Input{URLs: []string{"https://a"}, OutputDir: "out", MergedPath: "m.pdf"},
			opts: []Option{WithPacing(PacingSettings{
				MinWait: 0, MaxWait: time.Second, BurstSize: 10, Retries: 0, BackoffBase: time.Second,
			})},
			wantErr: ErrInvalidRetries,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &fakeDriver{}
			var sleeps []time.Duration
			svc := newTestService(drv, &fakeMerger{}, &sleeps, tt.opts...)

			_, err := svc.Run(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if len(drv.navigated) != 0 {
				t.Error("driver used despite invalid input")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// wrapBrowser mimics the driver's error wrapping for a browser failure.
func wrapBrowser(sentinel error) error {
	return fmt.Errorf("%w: simulated", sentinel)
}

// wrapMerge mimics the merger's error wrapping.
func wrapMerge(detail string) error {
	return fmt.Errorf("%w: %s", ErrMergePDF, detail)
}
