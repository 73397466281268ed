package web2pdf

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// rodSession implements pageDriver on one shared go-rod page. The browser is
// launched lazily on first use and must be released with Close; Close is
// idempotent so the run loop and the owning Service may both call it.
// Rod automatically downloads Chromium on first run if not found.
type rodSession struct {
	opts    SessionOptions
	timeout time.Duration // per-operation deadline for navigation and printing
	browser *rod.Browser
	page    *rod.Page
}

func newRodSession(opts SessionOptions, timeout time.Duration) *rodSession {
	return &rodSession{opts: opts, timeout: timeout}
}

// noSandboxRequested reports whether Chrome must launch without its sandbox:
// explicit ROD_NO_SANDBOX=1, a CI environment, or a pre-installed browser
// binary (the usual container setup).
func noSandboxRequested() bool {
	return os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// ensure lazily launches the browser and opens the single shared page.
func (s *rodSession) ensure() error {
	if s.page != nil {
		return nil
	}

	l := launcher.New().Headless(!s.opts.Headful)

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if noSandboxRequested() {
		l = l.NoSandbox(true)
	}

	if s.opts.UserDataDir != "" {
		l = l.UserDataDir(s.opts.UserDataDir)
	}
	if s.opts.WindowW > 0 && s.opts.WindowH > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", s.opts.WindowW, s.opts.WindowH))
	}
	if ua := strings.TrimSpace(s.opts.UserAgent); ua != "" {
		l = l.Set("user-agent", ua)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	s.browser = browser
	s.page = page
	return nil
}

// Navigate loads url on the shared page and waits for the load event.
func (s *rodSession) Navigate(url string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	page := s.page.Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

// Reload reloads the current page and waits for the load event.
func (s *rodSession) Reload() error {
	if err := s.ensure(); err != nil {
		return err
	}
	page := s.page.Timeout(s.timeout)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

// EmulateScreenMedia forces screen-media CSS so content hidden under print
// stylesheets still renders.
func (s *rodSession) EmulateScreenMedia() error {
	if err := s.ensure(); err != nil {
		return err
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: "screen"}).Call(s.page); err != nil {
		return fmt.Errorf("%w: %v", ErrScreenEmulation, err)
	}
	return nil
}

// ContentHeightPx measures the full rendered document height in CSS pixels.
func (s *rodSession) ContentHeightPx() (float64, error) {
	if err := s.ensure(); err != nil {
		return 0, err
	}
	obj, err := s.page.Timeout(s.timeout).Eval(contentHeightJS)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMeasureHeight, err)
	}
	return obj.Value.Num(), nil
}

// PrintToPDF invokes Chrome's print-to-PDF facility and returns the bytes.
func (s *rodSession) PrintToPDF(req *proto.PagePrintToPDF) ([]byte, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	reader, err := s.page.Timeout(s.timeout).PDF(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// HasAny reports whether any of the selectors matches on the current page.
func (s *rodSession) HasAny(selectors ...string) (bool, error) {
	if err := s.ensure(); err != nil {
		return false, err
	}
	for _, sel := range selectors {
		has, _, err := s.page.Has(sel)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// Close releases the page and browser. Safe to call more than once.
func (s *rodSession) Close() error {
	var lastErr error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			lastErr = err
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			lastErr = err
		}
		s.browser = nil
	}
	return lastErr
}
