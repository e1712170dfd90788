package scrape

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/sells-group/mass/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// selectorProfile describes how to pull a result list and pagination
// controls out of one site family's markup.
type selectorProfile struct {
	resultItems string
	title       string
	link        string
	description string
	nextPage    []string // candidates tried in order
}

// Site-specific profiles. Anything else falls back to the generic
// all-anchors profile.
var profiles = map[string]selectorProfile{
	"google": {
		resultItems: ".g",
		title:       "h3",
		link:        "a[href]",
		description: ".VwiC3b",
		nextPage:    []string{"#pnnext"},
	},
	"duckduckgo": {
		resultItems: ".result",
		title:       ".result__title",
		link:        ".result__title a[href]",
		description: ".result__snippet",
		nextPage:    []string{".result--more a", "a.result--more"},
	},
}

// genericNextPage is the pagination candidate list for unknown sites.
var genericNextPage = []string{`a[rel="next"]`, "a.next", "a.pagination-next"}

// searchBases maps engine names to their query URL prefixes.
var searchBases = map[string]string{
	"google":     "https://www.google.com/search?q=",
	"duckduckgo": "https://duckduckgo.com/?q=",
}

// BrowserScraper drives page navigation against a search engine or a
// target domain, extracting result lists with per-site selector profiles
// and following "next page" links up to the page budget.
type BrowserScraper struct {
	name       string
	searchBase string
	maxPerPage int
	timeout    time.Duration
}

// BrowserOption configures a BrowserScraper.
type BrowserOption func(*BrowserScraper)

// WithSearchBase overrides the engine's search URL prefix (for testing).
func WithSearchBase(base string) BrowserOption {
	return func(s *BrowserScraper) {
		s.searchBase = base
	}
}

// WithMaxPerPage caps extracted items per page.
func WithMaxPerPage(n int) BrowserOption {
	return func(s *BrowserScraper) {
		s.maxPerPage = n
	}
}

// NewBrowserScraper creates a scraper for the named search engine
// ("google" or "duckduckgo"; anything else gets the generic profile).
func NewBrowserScraper(name string, opts ...BrowserOption) *BrowserScraper {
	s := &BrowserScraper{
		name:       name,
		searchBase: searchBases[name],
		maxPerPage: 10,
		timeout:    30 * time.Second,
	}
	if s.searchBase == "" {
		s.searchBase = searchBases["google"]
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Scraper.
func (s *BrowserScraper) Name() string { return s.name }

// Scrape navigates up to req.MaxPages pages starting from the target
// domain or a keyword search, extracting results from each. Failures are
// contained: the worst case is the items collected so far.
func (s *BrowserScraper) Scrape(ctx context.Context, req Request) ([]model.ResultItem, error) {
	startURL := s.buildTargetURL(req)

	var items []model.ResultItem
	pageNum := 0

	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnResponse(func(r *colly.Response) {
		if ctx.Err() != nil {
			return
		}
		pageNum++

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			zap.L().Warn("browser: parse page",
				zap.String("scraper", s.name),
				zap.String("url", r.Request.URL.String()),
				zap.Error(err),
			)
			return
		}

		pageItems := s.extractPage(doc, r.Request.URL, pageNum, req.TargetDomain)
		items = append(items, pageItems...)
		zap.L().Debug("browser: page extracted",
			zap.String("scraper", s.name),
			zap.Int("page", pageNum),
			zap.Int("items", len(pageItems)),
		)

		if pageNum >= req.MaxPages {
			return
		}
		next := s.findNextPage(doc, r.Request.URL)
		if next == "" {
			zap.L().Debug("browser: no next page", zap.String("scraper", s.name), zap.Int("page", pageNum))
			return
		}
		if err := r.Request.Visit(next); err != nil {
			zap.L().Debug("browser: next page visit failed",
				zap.String("scraper", s.name),
				zap.String("url", next),
				zap.Error(err),
			)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		zap.L().Warn("browser: request failed",
			zap.String("scraper", s.name),
			zap.String("url", r.Request.URL.String()),
			zap.Error(err),
		)
	})

	if err := c.Visit(startURL); err != nil {
		zap.L().Warn("browser: visit failed",
			zap.String("scraper", s.name),
			zap.String("url", startURL),
			zap.Error(err),
		)
		return items, nil
	}
	c.Wait()

	return items, nil
}

// buildTargetURL picks the navigation entry point: the target domain when
// one is given, otherwise an engine search for the keywords.
func (s *BrowserScraper) buildTargetURL(req Request) string {
	if req.TargetDomain != "" {
		if strings.HasPrefix(req.TargetDomain, "http://") || strings.HasPrefix(req.TargetDomain, "https://") {
			return req.TargetDomain
		}
		return "https://" + req.TargetDomain
	}
	return s.searchBase + url.QueryEscape(req.Keywords)
}

// profileFor selects the selector profile matching the page host.
func profileFor(host string) (selectorProfile, bool) {
	switch {
	case strings.Contains(host, "google."):
		return profiles["google"], true
	case strings.Contains(host, "duckduckgo."):
		return profiles["duckduckgo"], true
	}
	return selectorProfile{}, false
}

func (s *BrowserScraper) extractPage(doc *goquery.Document, pageURL *url.URL, pageNum int, targetDomain string) []model.ResultItem {
	if profile, ok := profileFor(pageURL.Host); ok {
		return s.extractWithProfile(doc, profile, pageURL, pageNum, targetDomain)
	}
	return s.extractAnchors(doc, pageURL, pageNum, targetDomain)
}

// extractWithProfile pulls items from a known search engine's result
// structure.
func (s *BrowserScraper) extractWithProfile(doc *goquery.Document, profile selectorProfile, pageURL *url.URL, pageNum int, targetDomain string) []model.ResultItem {
	var items []model.ResultItem
	doc.Find(profile.resultItems).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(items) >= s.maxPerPage {
			return false
		}
		link := resolveHref(pageURL, sel.Find(profile.link).First().AttrOr("href", ""))
		if link == "" {
			return true
		}
		if targetDomain != "" && !strings.Contains(link, targetDomain) {
			return true
		}
		items = append(items, FormatResult(map[string]any{
			"title":       strings.TrimSpace(sel.Find(profile.title).First().Text()),
			"link":        link,
			"description": strings.TrimSpace(sel.Find(profile.description).First().Text()),
			"page_number": pageNum,
		}, s.name))
		return true
	})
	return items
}

// extractAnchors is the generic profile for unknown domains: every anchor
// on the page becomes a candidate item.
func (s *BrowserScraper) extractAnchors(doc *goquery.Document, pageURL *url.URL, pageNum int, targetDomain string) []model.ResultItem {
	var items []model.ResultItem
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(items) >= s.maxPerPage {
			return false
		}
		link := resolveHref(pageURL, sel.AttrOr("href", ""))
		if link == "" {
			return true
		}
		if targetDomain != "" && !strings.Contains(link, targetDomain) {
			return true
		}
		items = append(items, FormatResult(map[string]any{
			"title":       strings.TrimSpace(sel.Text()),
			"link":        link,
			"page_number": pageNum,
		}, s.name))
		return true
	})
	return items
}

// findNextPage tries the profile's pagination candidates in order and
// returns the resolved next URL, or "" when the page is terminal.
func (s *BrowserScraper) findNextPage(doc *goquery.Document, pageURL *url.URL) string {
	candidates := genericNextPage
	if profile, ok := profileFor(pageURL.Host); ok {
		candidates = profile.nextPage
	}
	for _, candidate := range candidates {
		if href := doc.Find(candidate).First().AttrOr("href", ""); href != "" {
			if next := resolveHref(pageURL, href); next != "" {
				return next
			}
		}
	}
	return ""
}

// resolveHref turns an anchor href into an absolute URL relative to the
// page it appeared on. Fragment-only and javascript links resolve to "".
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
