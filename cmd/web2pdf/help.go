package main

import (
	"fmt"
	"io"
)

// printUsage prints the command usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf (--urls-file <path> | --base-url <url>) [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print webpages to single-tall-page PDFs and merge them into one document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Source (exactly one required):")
	fmt.Fprintln(w, "      --urls-file <path>    Text file with one URL per line")
	fmt.Fprintln(w, "      --base-url <url>      Base URL; the 'start' query param is rewritten")
	fmt.Fprintln(w, "      --start-from <n>      First 'start' value (default: 0)")
	fmt.Fprintln(w, "      --start-to <n>        Last 'start' value, inclusive (default: 0)")
	fmt.Fprintln(w, "      --step <n>            'start' increment (default: 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --out-dir <dir>       Directory for individual PDFs (default: pdf_pages)")
	fmt.Fprintln(w, "  -m, --merged <path>       Merged PDF path (default: merged.pdf)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --letter              Letter width (8.5in) instead of A4 (8.27in)")
	fmt.Fprintln(w, "      --margin <f>          Margins in inches on all sides (default: 0.4)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pacing:")
	fmt.Fprintln(w, "      --wait-ms <n>         Extra wait after load before printing (default: 1500)")
	fmt.Fprintln(w, "      --min-wait <f>        Min random wait between pages in seconds (default: 2)")
	fmt.Fprintln(w, "      --max-wait <f>        Max random wait between pages in seconds (default: 5)")
	fmt.Fprintln(w, "      --rest-every <n>      Cooldown after this many pages (default: 10)")
	fmt.Fprintln(w, "      --cooldown-sec <f>    Cooldown duration in seconds (default: 1)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --headful             Show the browser window (needed for CAPTCHAs)")
	fmt.Fprintln(w, "      --user-data-dir <dir> Chrome profile to reuse (cookies, logins)")
	fmt.Fprintln(w, "      --captcha-timeout <n> Max seconds to wait for a manual solve (default: 600)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show runtime details")
	fmt.Fprintln(w, "      --version             Show version and exit")
}
