package tor

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if !strings.Contains(c.SocksAddr, "9050") {
		t.Fatalf("expected default socks addr to reference port 9050, got %q", c.SocksAddr)
	}
	if c.Timeout.Seconds() != 45 {
		t.Fatalf("expected 45s timeout, got %v", c.Timeout)
	}
}

func TestRandomUserAgentIsFromRotation(t *testing.T) {
	ua := RandomUserAgent()
	if !strings.Contains(ua, "Mozilla") {
		t.Fatalf("expected a Mozilla-bearing user agent, got %q", ua)
	}
}

func TestBuildURLEncodesQuery(t *testing.T) {
	engine := DefaultSearchEngines[0]
	url := engine.BuildURL("ransomware payments")
	if !strings.Contains(url, "ransomware+payments") {
		t.Fatalf("expected space to encode as '+', got %q", url)
	}
	if !strings.HasSuffix(url, ".onion/search/?q=ransomware+payments") {
		t.Fatalf("unexpected built url: %q", url)
	}
}

func TestActiveEnginesCountsAtLeastTen(t *testing.T) {
	if count := len(ActiveEngines()); count < 10 {
		t.Fatalf("expected at least 10 active engines, got %d", count)
	}
}

func TestEnginesByReliabilitySortedDescending(t *testing.T) {
	engines := EnginesByReliability()
	for i := 1; i < len(engines); i++ {
		if engines[i].Reliability > engines[i-1].Reliability {
			t.Fatalf("expected descending reliability, got %v before %v", engines[i-1], engines[i])
		}
	}
}

func TestParseSearchResultsSkipsSearchLinksAndShortTitles(t *testing.T) {
	html := `
		<html><body>
			<a href="http://example1234567890abcdef.onion/page">Test Site</a>
			<a href="http://search.onion/search?q=test">Search Link</a>
			<a href="http://another1234567890abcdef.onion/">Another Site</a>
		</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	results := parseSearchResults(doc, "TestEngine")
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	for _, r := range results {
		if strings.Contains(r.URL, "search") {
			t.Fatalf("expected search links to be filtered, got %q", r.URL)
		}
	}
}

func TestExtractContentSkipsScriptAndStyle(t *testing.T) {
	html := `
		<html><head><title>Test Page</title></head>
		<body>
			<script>var x = 1;</script>
			<h1>Hello World</h1>
			<p>This is test content.</p>
			<style>.x { color: red; }</style>
		</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	title, text := extractContent(doc)
	if title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", title)
	}
	if !strings.Contains(text, "Hello World") || !strings.Contains(text, "test content") {
		t.Fatalf("expected extracted text to contain body content, got %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "color: red") {
		t.Fatalf("expected script/style content to be excluded, got %q", text)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  hello   world  \n\t  test  ")
	if got != "hello world test" {
		t.Fatalf("expected normalized whitespace, got %q", got)
	}
}
