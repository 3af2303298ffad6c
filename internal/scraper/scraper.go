package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/o365-builds/internal/build"
	"github.com/pfrederiksen/o365-builds/internal/logger"
)

const (
	UserAgent = "o365-builds/1.0 (github.com/pfrederiksen/o365-builds)"

	// VersionPrefix is prepended to the scraped build suffix.
	VersionPrefix = "16.0."
)

// ParseMode selects how a page body is scanned.
type ParseMode string

const (
	// ParseRaw matches the version line against the raw response body.
	ParseRaw ParseMode = "raw"
	// ParseDOM matches the text of every <p><em> element.
	ParseDOM ParseMode = "dom"
)

var (
	// versionLinePattern matches "<p><em>Version 2308 (Build 16731.20716)</em></p>".
	versionLinePattern = regexp.MustCompile(`<p><em>Version (?P<build>[^\s<]+) \(Build (?P<suffix>[^)<]*)\)</em></p>`)

	// versionTextPattern matches the element text used in DOM mode.
	versionTextPattern = regexp.MustCompile(`^Version\s+(?P<build>\S+)\s+\(Build\s+(?P<suffix>[^)]*)\)$`)
)

// Scraper fetches update history pages and extracts build records.
type Scraper struct {
	client    *http.Client
	userAgent string
	prefix    string
	mode      ParseMode
	urls      map[Channel][]string
	log       *logger.Logger
	metrics   *logger.Metrics
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout sets the client timeout. The default client has none.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithVersionPrefix replaces the "16.0." prefix.
func WithVersionPrefix(prefix string) Option {
	return func(s *Scraper) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithParseMode selects raw or DOM scanning.
func WithParseMode(m ParseMode) Option {
	return func(s *Scraper) {
		if m != "" {
			s.mode = m
		}
	}
}

// WithChannelURLs overrides the pages of the named channels.
func WithChannelURLs(overrides map[string][]string) Option {
	return func(s *Scraper) { s.urls = mergeURLs(overrides) }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *logger.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:    &http.Client{},
		userAgent: UserAgent,
		prefix:    VersionPrefix,
		mode:      ParseRaw,
		urls:      mergeURLs(nil),
		log:       logger.Default(),
		metrics:   logger.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URLs resolves channel against this scraper's page table.
func (s *Scraper) URLs(channel Channel) ([]string, error) {
	return resolveURLs(s.urls, channel)
}

// FetchBuildRecords fetches the records of channel using a default Scraper.
func FetchBuildRecords(channel Channel) []build.Record {
	return New().FetchBuildRecords(channel)
}

// FetchBuildRecords fetches every page of channel in order and returns the records
// sorted by version with duplicates removed. Pages that fail are skipped. An unknown
// channel is reported and yields no records.
func (s *Scraper) FetchBuildRecords(channel Channel) []build.Record {
	urls, err := s.URLs(channel)
	if err != nil {
		s.log.Info("unknown channel", logger.Fields{
			"channel":  string(channel),
			"accepted": Channels(),
		})
	}

	var records []build.Record
	for _, url := range urls {
		records = s.fetchPage(url, records)
	}

	unique := build.Normalize(records)
	s.metrics.SetGauge("records.returned", float64(len(unique)))
	return unique
}

// fetchPage appends the records found at url to acc.
func (s *Scraper) fetchPage(url string, acc []build.Record) []build.Record {
	start := time.Now()
	defer func() { s.metrics.RecordTiming("fetch.page", time.Since(start)) }()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		s.fetchFailed(url, fmt.Errorf("creating request: %w", err))
		return acc
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.fetchFailed(url, fmt.Errorf("fetching page: %w", err))
		return acc
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.IncrCounter("pages.skipped")
		s.log.Info("skipping page", logger.Fields{
			"url":         url,
			"status_code": resp.StatusCode,
		})
		return acc
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.fetchFailed(url, fmt.Errorf("reading body: %w", err))
		return acc
	}
	s.metrics.IncrCounter("pages.fetched")

	var found []build.Record
	switch s.mode {
	case ParseDOM:
		found, err = s.parseRecordsDOM(bytes.NewReader(body), url)
	default:
		found = s.parseRecords(body, url)
	}
	if err != nil {
		s.fetchFailed(url, err)
		return acc
	}

	s.log.Debug("parsed page", logger.Fields{"url": url, "records": len(found)})
	return append(acc, found...)
}

func (s *Scraper) fetchFailed(url string, err error) {
	s.metrics.IncrCounter("pages.failed")
	s.log.DebugErr("fetch failed", logger.Fields{"url": url}, err)
}

// parseRecords scans a raw page body for version lines.
func (s *Scraper) parseRecords(body []byte, sourceURL string) []build.Record {
	buildIdx := versionLinePattern.SubexpIndex("build")
	suffixIdx := versionLinePattern.SubexpIndex("suffix")

	var records []build.Record
	for _, m := range versionLinePattern.FindAllSubmatch(body, -1) {
		if r, ok := s.newRecord(string(m[buildIdx]), string(m[suffixIdx]), sourceURL); ok {
			records = append(records, r)
		}
	}
	return records
}

// parseRecordsDOM matches the text of each <p><em> element.
func (s *Scraper) parseRecordsDOM(r io.Reader, sourceURL string) ([]build.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	buildIdx := versionTextPattern.SubexpIndex("build")
	suffixIdx := versionTextPattern.SubexpIndex("suffix")

	var records []build.Record
	doc.Find("p > em").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		m := versionTextPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}
		if rec, ok := s.newRecord(m[buildIdx], m[suffixIdx], sourceURL); ok {
			records = append(records, rec)
		}
	})

	return records, nil
}

// newRecord builds a record from a match, skipping suffixes that are not dotted numbers.
func (s *Scraper) newRecord(buildNumber, suffix, sourceURL string) (build.Record, bool) {
	r, err := build.NewRecord(s.prefix, suffix, buildNumber)
	if err != nil {
		s.metrics.IncrCounter("records.malformed")
		s.log.Warn("skipping malformed version", logger.Fields{
			"url":    sourceURL,
			"build":  buildNumber,
			"suffix": suffix,
			"error":  err.Error(),
		})
		return build.Record{}, false
	}
	s.metrics.IncrCounter("records.parsed")
	return r, true
}
