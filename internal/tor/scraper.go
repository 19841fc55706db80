package tor

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxContentLength caps the text extracted from any single page.
const maxContentLength = 4000

// ScrapedPage is the result of fetching and extracting text from a URL.
type ScrapedPage struct {
	URL       string
	Title     string
	Text      string
	CharCount int
	Truncated bool
}

// ScrapeURL fetches url and extracts its title and visible text. A
// non-success status yields an empty page rather than an error — the
// caller still needs to account for the attempt, just with nothing found.
func ScrapeURL(ctx context.Context, client *http.Client, url string) (ScrapedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ScrapedPage{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return ScrapedPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ScrapedPage{URL: url}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ScrapedPage{}, err
	}

	title, text := extractContent(doc)

	truncated := len(text) > maxContentLength
	finalText := text
	if truncated {
		finalText = text[:maxContentLength] + "...(truncated)"
	}

	return ScrapedPage{
		URL:       url,
		Title:     title,
		Text:      finalText,
		CharCount: len(finalText),
		Truncated: truncated,
	}, nil
}

// extractContent pulls the <title> and the body's visible text, skipping
// script/style/noscript subtrees entirely.
func extractContent(doc *goquery.Document) (string, string) {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	body := doc.Find("body").First()
	body.Find("script, style, noscript").Remove()

	text := normalizeWhitespace(body.Text())

	return title, text
}

// normalizeWhitespace collapses runs of whitespace to single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
