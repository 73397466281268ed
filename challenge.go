package web2pdf

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Markers of a Scholar interstitial: the legacy captcha container, an
// embedded reCAPTCHA, or a form posting to the /sorry block page.
var challengeSelectors = []string{
	"#gs_captcha_ccl",
	"#recaptcha",
	`form[action*='sorry']`,
}

// challengeWatcher pauses automated progress while a human-verification
// interstitial is on screen. It only makes sense on headful sessions, where
// an operator can solve the challenge in the visible window.
type challengeWatcher struct {
	drv      pageDriver
	settings ChallengeSettings
	sleep    sleepFunc
	now      func() time.Time
	stderr   io.Writer
}

// WaitForClear probes the current page for challenge markers. If none are
// present it returns false immediately. Otherwise it prompts the operator
// and polls until the markers disappear or the timeout elapses, returning
// true so the caller reloads the target before capturing. After the timeout
// it still returns true: the run degrades to best-effort rather than
// failing. Probe errors are ignored (best-effort detection).
func (w *challengeWatcher) WaitForClear(ctx context.Context) bool {
	present, err := w.drv.HasAny(challengeSelectors...)
	if err != nil || !present {
		return false
	}

	fmt.Fprintln(w.stderr, "challenge page detected; please solve it in the browser window")

	deadline := w.now().Add(w.settings.Timeout)
	for w.now().Before(deadline) {
		if !w.sleep(ctx, w.settings.PollInterval) {
			return true
		}
		still, err := w.drv.HasAny(challengeSelectors...)
		if err == nil && !still {
			fmt.Fprintln(w.stderr, "challenge cleared; resuming")
			return true
		}
	}

	fmt.Fprintln(w.stderr, "challenge not cleared within timeout; continuing anyway")
	return true
}
