package tor

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// SearchResult is a single hit returned by a dark-web search engine.
type SearchResult struct {
	Title  string
	URL    string
	Engine string
}

var hrefOnionRe = regexp.MustCompile(`https?://[a-z0-9.]+\.onion[^\s"'<>]*`)

// CrawlEngine queries a single search engine and parses its result links.
func CrawlEngine(ctx context.Context, client *http.Client, engine SearchEngine, query string) ([]SearchResult, error) {
	return crawlURL(ctx, client, engine.BuildURL(query), engine.Name)
}

func crawlURL(ctx context.Context, client *http.Client, url, engineName string) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(doc, engineName), nil
}

// CrawlEngines fans out across engines concurrently (bounded by
// maxConcurrent), then flattens and deduplicates by normalized URL —
// trailing slash stripped, lowercased.
func CrawlEngines(ctx context.Context, client *http.Client, engines []SearchEngine, query string, maxConcurrent int) []SearchResult {
	type job struct {
		url, name string
	}
	jobs := make(chan job)
	results := make(chan []SearchResult)

	var wg sync.WaitGroup
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	for i := 0; i < maxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				found, err := crawlURL(ctx, client, j.url, j.name)
				if err != nil {
					results <- nil
					continue
				}
				results <- found
			}
		}()
	}

	go func() {
		for _, e := range engines {
			jobs <- job{url: e.BuildURL(query), name: e.Name}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]struct{})
	var deduped []SearchResult
	for batch := range results {
		for _, r := range batch {
			normalized := strings.ToLower(strings.TrimSuffix(r.URL, "/"))
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			deduped = append(deduped, r)
		}
	}
	return deduped
}

// parseSearchResults extracts .onion result links from a search engine's
// result page, skipping self-referential search/query links and titles
// shorter than 3 characters.
func parseSearchResults(doc *goquery.Document, engineName string) []SearchResult {
	var results []SearchResult

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		match := hrefOnionRe.FindString(href)
		if match == "" {
			return
		}
		if strings.Contains(match, "search") || strings.Contains(match, "query") {
			return
		}
		title := strings.TrimSpace(s.Text())
		if len(title) < 3 {
			return
		}
		results = append(results, SearchResult{Title: title, URL: match, Engine: engineName})
	})

	return results
}
