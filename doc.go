// Package web2pdf captures web pages as single-tall-page PDFs through
// headless Chrome and merges them into one document.
//
// # Quick Start
//
// Create a service, run it over an ordered URL sequence, and close when done:
//
//	svc := web2pdf.New()
//	defer svc.Close()
//
//	result, err := svc.Run(ctx, web2pdf.Input{
//	    URLs:       []string{"https://example.com/?start=0", "https://example.com/?start=10"},
//	    OutputDir:  "pdf_pages",
//	    MergedPath: "merged.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("merged:", result.MergedPath)
//
// # Pipeline
//
// Each URL goes through these stages:
//
//  1. Random pacing delay (avoids fixed-interval request patterns)
//  2. Navigation with up to 3 attempts and doubling backoff
//  3. Interstitial challenge wait (headful sessions only)
//  4. Settle delay, screen-media emulation, content height measurement
//  5. Chrome printToPDF with the paper height sized to the full content,
//     producing exactly one physical page
//
// Successful captures accumulate in sequence order and are concatenated with
// pdfcpu into the merged output. URLs whose attempts exhaust are skipped,
// not fatal; a run with zero captures fails with ErrNothingToMerge.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := web2pdf.New(
//	    web2pdf.WithCapture(web2pdf.CaptureSettings{Width: web2pdf.PaperLetter, MarginInches: 0.4, MinHeightInches: 1, MaxHeightInches: 200, SettleDelay: 2 * time.Second}),
//	    web2pdf.WithSession(web2pdf.SessionOptions{Headful: true, UserDataDir: "/home/me/.config/chrome-profile"}),
//	)
//
// # Challenge Pages
//
// On headful sessions the service detects known human-verification
// interstitials, prompts the operator to solve them in the visible window,
// and polls until the markers disappear or a timeout elapses; after the
// timeout it proceeds anyway. Headless sessions skip detection entirely and
// will capture the challenge page itself. This is a known limitation.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package web2pdf
