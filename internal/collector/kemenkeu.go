package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"KursPajak/internal/model"
)

// DefaultBaseURL is the kurs pajak publication page.
const DefaultBaseURL = "https://fiskal.kemenkeu.go.id/informasi-publik/kurs-pajak"

// KemenkeuFetcher implements Fetcher against the Ministry of Finance portal.
type KemenkeuFetcher struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewKemenkeuFetcher creates a fetcher with optional proxy support.
func NewKemenkeuFetcher(baseURL, proxyURL string, timeout time.Duration) *KemenkeuFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KemenkeuFetcher{
		BaseURL:   baseURL,
		UserAgent: "Mozilla/5.0",
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *KemenkeuFetcher) Name() string { return "kemenkeu" }

// Fetch performs a single GET for the week starting at w.Start. Any outcome other
// than a readable 200 response is returned as *FetchFailure.
func (f *KemenkeuFetcher) Fetch(ctx context.Context, w model.WeekWindow) ([]byte, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, &FetchFailure{WeekCode: w.Code, Err: fmt.Errorf("parse base url: %w", err)}
	}
	q := u.Query()
	q.Set("date", w.Start.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchFailure{WeekCode: w.Code, Err: err}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchFailure{WeekCode: w.Code, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchFailure{WeekCode: w.Code, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchFailure{WeekCode: w.Code, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
