// Package ingest turns job posting pages and files into structured
// postings: fetched, reduced to text, and scanned for skills.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcus/skillmatch/internal/fetch"
	"github.com/marcus/skillmatch/internal/logger"
	"github.com/marcus/skillmatch/internal/skills"
)

var (
	// ErrFetchFailed is returned when the posting page cannot be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrExtractionFailed is returned when content extraction fails.
	ErrExtractionFailed = errors.New("content extraction failed")
)

// DefaultConcurrency bounds parallel URL ingestion.
const DefaultConcurrency = 4

// maxLogLen caps posting text previews in debug logs.
const maxLogLen = 200

// Posting is the structured result of ingesting one job posting source.
type Posting struct {
	URL       string    `json:"url,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Title     string    `json:"title,omitempty"`
	Company   string    `json:"company,omitempty"`
	Text      string    `json:"text"`
	Skills    []string  `json:"skills"`
	Hash      string    `json:"hash"`
	Rendered  bool      `json:"rendered,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Ingestor fetches and processes posting pages. The zero value works;
// New fills in defaults and a logger.
type Ingestor struct {
	FetchOptions   *fetch.Options
	UseBrowser     bool
	BrowserTimeout time.Duration
	Concurrency    int
	Log            *zap.Logger
}

// New returns an Ingestor with default fetch options.
func New(log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		FetchOptions: fetch.DefaultOptions(),
		Concurrency:  DefaultConcurrency,
		Log:          log,
	}
}

func (i *Ingestor) logger() *zap.Logger {
	if i.Log == nil {
		return zap.NewNop()
	}
	return i.Log
}

// FromURL fetches a posting page, extracts its main text with
// platform-specific selectors, and scans the text for known skills.
// Browser rendering is used up front for platforms known to ship empty
// HTML shells, and as a fallback when plain HTTP yields too little text.
func (i *Ingestor) FromURL(ctx context.Context, urlStr string) (*Posting, error) {
	log := i.logger()
	platform := fetch.DetectPlatform(urlStr)
	log.Debug("ingesting posting",
		zap.String("url", urlStr),
		zap.String("platform", string(platform)))

	var html string
	var rendered bool

	if i.UseBrowser && fetch.IsBrowserFirst(platform) {
		browserHTML, err := fetch.WithBrowser(ctx, urlStr, i.BrowserTimeout)
		if err != nil {
			log.Warn("browser-first rendering failed, trying plain HTTP",
				zap.String("url", urlStr), zap.Error(err))
		} else {
			html = browserHTML
			rendered = true
		}
	}

	if html == "" {
		result, err := fetch.URL(ctx, urlStr, i.FetchOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		html = result.HTML
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	if i.UseBrowser && !rendered && fetch.ShouldUseBrowser(text) {
		log.Debug("content too short, falling back to browser rendering",
			zap.String("url", urlStr), zap.Int("chars", len(text)))

		browserHTML, berr := fetch.WithBrowser(ctx, urlStr, i.BrowserTimeout)
		if berr != nil {
			log.Warn("browser rendering failed, keeping HTTP content",
				zap.String("url", urlStr), zap.Error(berr))
		} else if retext, rerr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); rerr == nil {
			html = browserHTML
			text = retext
			rendered = true
		}
	}

	cleaned := CleanText(text)
	title, company := pageIdentity(html)
	found := skills.ExtractFromText(cleaned)

	log.Debug("extracted posting text",
		zap.String("url", urlStr),
		zap.String("text_preview", logger.TruncateForLog(cleaned, maxLogLen)))
	log.Info("ingested posting",
		zap.String("url", urlStr),
		zap.String("platform", string(platform)),
		zap.Int("chars", len(cleaned)),
		zap.Int("skills", len(found)),
		zap.Bool("rendered", rendered))

	return &Posting{
		URL:       urlStr,
		Platform:  string(platform),
		Title:     title,
		Company:   company,
		Text:      cleaned,
		Skills:    found.Slice(),
		Hash:      contentHash(cleaned),
		Rendered:  rendered,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FromURLs ingests several URLs concurrently. Results and errors are
// aligned with the input slice; one bad URL never fails the batch.
func (i *Ingestor) FromURLs(ctx context.Context, urls []string) ([]*Posting, []error) {
	postings := make([]*Posting, len(urls))
	errs := make([]error, len(urls))

	limit := i.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for idx, u := range urls {
		g.Go(func() error {
			p, err := i.FromURL(ctx, u)
			if err != nil {
				errs[idx] = err
				return nil
			}
			postings[idx] = p
			return nil
		})
	}
	_ = g.Wait()

	return postings, errs
}

// FromText processes already-extracted posting text.
func (i *Ingestor) FromText(text string) *Posting {
	cleaned := CleanText(text)
	return &Posting{
		Text:      cleaned,
		Skills:    skills.ExtractFromText(cleaned).Slice(),
		Hash:      contentHash(cleaned),
		FetchedAt: time.Now().UTC(),
	}
}

// pageIdentity pulls the posting title and company from page metadata.
// Open Graph tags are the most reliable source across job boards.
func pageIdentity(html string) (title, company string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		title = strings.TrimSpace(v)
	} else {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		company = strings.TrimSpace(v)
	}

	return title, company
}

// contentHash computes the SHA-256 hex digest of content.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
