package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	web2pdf "github.com/alnah/go-web2pdf"
	"github.com/alnah/go-web2pdf/internal/config"
	"github.com/alnah/go-web2pdf/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrSourceMissing  = errors.New("no URL source specified: use --urls-file or --base-url")
	ErrSourceConflict = errors.New("--urls-file and --base-url are mutually exclusive")
)

// runSettings holds the fully resolved parameters of one run.
// Resolution order: explicit flag > config file > built-in default.
type runSettings struct {
	source  config.SourceConfig
	outDir  string
	merged  string
	capture web2pdf.CaptureSettings
	pacing  web2pdf.PacingSettings
	session web2pdf.SessionOptions
	captcha time.Duration
}

// runCapture resolves settings, builds the URL sequence, and drives the
// capture service.
func runCapture(ctx context.Context, flags *captureFlags, fs *flag.FlagSet, env *Environment) error {
	cfg := env.Config
	if flags.common.config != "" {
		loaded, err := config.LoadConfig(flags.common.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	settings := resolveSettings(flags, fs, cfg)

	urls, err := resolveURLs(settings.source)
	if err != nil {
		return err
	}

	stdout := env.Stdout
	if flags.common.quiet {
		stdout = io.Discard
	}

	svc := web2pdf.New(
		web2pdf.WithCapture(settings.capture),
		web2pdf.WithPacing(settings.pacing),
		web2pdf.WithSession(settings.session),
		web2pdf.WithChallenge(web2pdf.ChallengeSettings{
			Timeout:      settings.captcha,
			PollInterval: 3 * time.Second,
		}),
		web2pdf.WithProgress(stdout, env.Stderr),
	)
	defer svc.Close()

	result, err := svc.Run(ctx, web2pdf.Input{
		URLs:       urls,
		OutputDir:  settings.outDir,
		MergedPath: settings.merged,
	})
	if err != nil {
		return err
	}

	mergedAbs, absErr := filepath.Abs(result.MergedPath)
	if absErr != nil {
		mergedAbs = result.MergedPath
	}
	fmt.Fprintf(env.Stdout, "Done. Merged %d page(s) -> %s\n", len(result.Artifacts), mergedAbs)
	return nil
}

// resolveSettings merges flags over config. A flag wins only when the user
// set it explicitly; otherwise the (possibly file-loaded) config value is
// used.
func resolveSettings(flags *captureFlags, fs *flag.FlagSet, cfg *config.Config) runSettings {
	source := cfg.Source
	if fs.Changed("urls-file") {
		source.URLsFile = flags.source.urlsFile
	}
	if fs.Changed("base-url") {
		source.BaseURL = flags.source.baseURL
	}
	if fs.Changed("start-from") {
		source.StartFrom = flags.source.startFrom
	}
	if fs.Changed("start-to") {
		source.StartTo = flags.source.startTo
	}
	if fs.Changed("step") {
		source.Step = flags.source.step
	}

	width := cfg.Page.Width
	if width == "" {
		width = web2pdf.PaperA4
	}
	if fs.Changed("letter") {
		width = web2pdf.PaperA4
		if flags.page.letter {
			width = web2pdf.PaperLetter
		}
	}

	capture := web2pdf.DefaultCaptureSettings()
	capture.Width = width
	capture.MarginInches = resolveFloat(fs, "margin", flags.page.margin, cfg.Page.Margin)
	capture.SettleDelay = time.Duration(resolveInt(fs, "wait-ms", flags.pacing.waitMS, cfg.Wait.SettleMS)) * time.Millisecond

	pacing := web2pdf.DefaultPacingSettings()
	pacing.MinWait = secondsToDuration(resolveFloat(fs, "min-wait", flags.pacing.minWait, cfg.Wait.MinSeconds))
	pacing.MaxWait = secondsToDuration(resolveFloat(fs, "max-wait", flags.pacing.maxWait, cfg.Wait.MaxSeconds))
	pacing.BurstSize = resolveInt(fs, "rest-every", flags.pacing.restEvery, cfg.Burst.RestEvery)
	pacing.Cooldown = secondsToDuration(resolveFloat(fs, "cooldown-sec", flags.pacing.cooldownSec, cfg.Burst.CooldownSeconds))

	session := web2pdf.DefaultSessionOptions()
	session.Headful = flags.browser.headful || (!fs.Changed("headful") && cfg.Browser.Headful)
	session.UserDataDir = resolveString(fs, "user-data-dir", flags.browser.userDataDir, cfg.Browser.UserDataDir)

	return runSettings{
		source:  source,
		outDir:  resolveString(fs, "out-dir", flags.output.outDir, cfg.Output.Dir),
		merged:  resolveString(fs, "merged", flags.output.merged, cfg.Output.Merged),
		capture: capture,
		pacing:  pacing,
		session: session,
		captcha: time.Duration(resolveInt(fs, "captcha-timeout", flags.browser.captchaTimeoutSec, cfg.Browser.CaptchaTimeoutSeconds)) * time.Second,
	}
}

// resolveURLs enforces source mutual exclusivity and produces the ordered
// URL sequence.
func resolveURLs(source config.SourceConfig) ([]string, error) {
	switch {
	case source.URLsFile != "" && source.BaseURL != "":
		return nil, ErrSourceConflict
	case source.URLsFile != "":
		urls, err := web2pdf.ReadURLFile(source.URLsFile)
		if err != nil {
			return nil, err
		}
		if len(urls) == 0 {
			return nil, web2pdf.ErrNoURLs
		}
		return urls, nil
	case source.BaseURL != "":
		urls, err := web2pdf.ExpandStartRange(source.BaseURL, source.StartFrom, source.StartTo, source.Step)
		if err != nil {
			return nil, err
		}
		if len(urls) == 0 {
			return nil, web2pdf.ErrNoURLs
		}
		return urls, nil
	default:
		return nil, ErrSourceMissing
	}
}

// resolveString returns the flag value when explicitly set, else the config value.
func resolveString(fs *flag.FlagSet, name, flagVal, cfgVal string) string {
	if fs.Changed(name) || cfgVal == "" {
		return flagVal
	}
	return cfgVal
}

// resolveInt returns the flag value when explicitly set, else the config value.
func resolveInt(fs *flag.FlagSet, name string, flagVal, cfgVal int) int {
	if fs.Changed(name) {
		return flagVal
	}
	return cfgVal
}

// resolveFloat returns the flag value when explicitly set, else the config value.
func resolveFloat(fs *flag.FlagSet, name string, flagVal, cfgVal float64) float64 {
	if fs.Changed(name) {
		return flagVal
	}
	return cfgVal
}

// secondsToDuration converts fractional seconds to a Duration.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// formatError appends actionable hints to selected error classes.
// configName is the --config value, used to suggest where a missing config
// could live.
func formatError(err error, configName string) string {
	msg := err.Error()
	switch {
	case errors.Is(err, web2pdf.ErrBrowserConnect):
		msg += hints.ForBrowserConnect()
	case errors.Is(err, config.ErrConfigNotFound):
		msg += hints.ForConfigNotFound(configName)
	case errors.Is(err, web2pdf.ErrCreateOutputDir):
		msg += hints.ForOutputDirectory()
	case errors.Is(err, web2pdf.ErrNothingToMerge):
		msg += hints.ForChallengeTimeout()
	}
	return msg
}
