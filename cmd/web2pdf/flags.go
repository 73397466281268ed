package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared with other tooling.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	version bool
}

// sourceFlags selects where the URL sequence comes from.
// urlsFile and baseURL are mutually exclusive.
type sourceFlags struct {
	urlsFile  string
	baseURL   string
	startFrom int
	startTo   int
	step      int
}

// outputFlags holds output destination flags.
type outputFlags struct {
	outDir string
	merged string
}

// pageFlags holds paper layout flags.
type pageFlags struct {
	letter bool
	margin float64
}

// pacingFlags holds settle, pacing, and cooldown flags.
type pacingFlags struct {
	waitMS      int
	minWait     float64
	maxWait     float64
	restEvery   int
	cooldownSec float64
}

// browserFlags holds browser session flags.
type browserFlags struct {
	headful           bool
	userDataDir       string
	captchaTimeoutSec int
}

// captureFlags holds all flags for the web2pdf command.
type captureFlags struct {
	common  commonFlags
	source  sourceFlags
	output  outputFlags
	page    pageFlags
	pacing  pacingFlags
	browser browserFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show runtime details")
	fs.BoolVar(&f.version, "version", false, "show version and exit")
}

// addSourceFlags adds URL source flags to a FlagSet.
func addSourceFlags(fs *flag.FlagSet, f *sourceFlags) {
	fs.StringVar(&f.urlsFile, "urls-file", "", "text file with one URL per line")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL whose 'start' param gets rewritten")
	fs.IntVar(&f.startFrom, "start-from", 0, "first 'start' value when using --base-url")
	fs.IntVar(&f.startTo, "start-to", 0, "last 'start' value (inclusive) when using --base-url")
	fs.IntVar(&f.step, "step", 10, "'start' increment when using --base-url")
}

// addOutputFlags adds output destination flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.outDir, "out-dir", "o", "pdf_pages", "directory for individual PDFs")
	fs.StringVarP(&f.merged, "merged", "m", "merged.pdf", "output merged PDF path")
}

// addPageFlags adds paper layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.BoolVar(&f.letter, "letter", false, "use Letter width (8.5in) instead of A4 (8.27in)")
	fs.Float64Var(&f.margin, "margin", 0.4, "margins in inches on all sides")
}

// addPacingFlags adds settle/pacing/cooldown flags to a FlagSet.
func addPacingFlags(fs *flag.FlagSet, f *pacingFlags) {
	fs.IntVar(&f.waitMS, "wait-ms", 1500, "extra wait after load before printing (ms)")
	fs.Float64Var(&f.minWait, "min-wait", 2.0, "minimum random wait between pages (seconds)")
	fs.Float64Var(&f.maxWait, "max-wait", 5.0, "maximum random wait between pages (seconds)")
	fs.IntVar(&f.restEvery, "rest-every", 10, "cooldown after this many pages")
	fs.Float64Var(&f.cooldownSec, "cooldown-sec", 1, "cooldown seconds after each burst")
}

// addBrowserFlags adds browser session flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.BoolVar(&f.headful, "headful", false, "run Chrome with UI (needed to solve CAPTCHAs)")
	fs.StringVar(&f.userDataDir, "user-data-dir", "", "Chrome user data dir to reuse (cookies, logins)")
	fs.IntVar(&f.captchaTimeoutSec, "captcha-timeout", 600, "max seconds to wait for a manual CAPTCHA solve")
}

// parseFlags parses all command flags and returns the parsed flag set so
// callers can distinguish explicitly set flags from defaults.
func parseFlags(args []string) (*captureFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("web2pdf", flag.ContinueOnError)
	f := &captureFlags{}

	addCommonFlags(fs, &f.common)
	addSourceFlags(fs, &f.source)
	addOutputFlags(fs, &f.output)
	addPageFlags(fs, &f.page)
	addPacingFlags(fs, &f.pacing)
	addBrowserFlags(fs, &f.browser)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs, nil
}
