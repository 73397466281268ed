package web2pdf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ReadURLFile reads a newline-delimited URL list. Lines are trimmed and
// blank lines dropped; file order is preserved.
func ReadURLFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- list path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadURLFile, err)
	}

	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// ExpandStartRange generates one URL per integer s in [from, to] stepping by
// step, with the base URL's "start" query parameter set to s (added if
// absent, replaced if present). Path, fragment, and all other query
// parameters are preserved.
func ExpandStartRange(baseURL string, from, to, step int) ([]string, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	var urls []string
	for s := from; s <= to; s += step {
		u := *parsed
		q := u.Query()
		q.Set("start", strconv.Itoa(s))
		u.RawQuery = q.Encode()
		urls = append(urls, u.String())
	}
	return urls, nil
}
