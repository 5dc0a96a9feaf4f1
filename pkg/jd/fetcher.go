package jd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// StdinInput selects standard input as the job description source.
const StdinInput = "-"

// MaxBodyBytes caps how much of a job posting page is read.
const MaxBodyBytes = 5 << 20

// FetchTimeout bounds a single job posting download.
const FetchTimeout = 30 * time.Second

// Fetch retrieves a job description from stdin ("-"), an http(s) URL or a
// file. HTML content is reduced to its visible text.
func Fetch(ctx context.Context, input string) (content string, err error) {
	if input == StdinInput {
		content, err = fetchFromReader(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read JD from stdin")
		}
		return content, err
	}

	// Check if input is a URL
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch JD from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch JD from file: %s", input)
		return content, err
	}

	return content, err
}

// fetchFromReader reads a job description from r, typically stdin.
func fetchFromReader(r io.Reader) (content string, err error) {
	var data []byte
	data, err = io.ReadAll(io.LimitReader(r, MaxBodyBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read input")
		return content, err
	}

	content, err = toText(data, looksLikeHTML(data))
	return content, err
}

// fetchFromFile reads a job description from a file.
func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	isHTML := ext == ".html" || ext == ".htm" || looksLikeHTML(data)

	content, err = toText(data, isHTML)
	if err != nil {
		err = errors.Wrapf(err, "file %s", path)
		return content, err
	}

	return content, err
}

// fetchFromURL retrieves a job description from a URL.
func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "cover-letter/1.0")

	client := &http.Client{
		Timeout: FetchTimeout,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	isHTML := strings.Contains(resp.Header.Get("Content-Type"), "html") || looksLikeHTML(bodyBytes)

	content, err = toText(bodyBytes, isHTML)
	return content, err
}

func toText(data []byte, isHTML bool) (content string, err error) {
	if isHTML {
		content, err = htmlToText(bytes.NewReader(data))
		if err != nil {
			return content, err
		}
	} else {
		content = strings.TrimSpace(string(data))
	}

	if content == "" {
		err = errors.New("job description is empty")
		return content, err
	}

	return content, err
}

func looksLikeHTML(data []byte) (isHTML bool) {
	isHTML = strings.HasPrefix(http.DetectContentType(data), "text/html")
	return isHTML
}
