package fetcher

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/stayscout/stayscout/internal/logger"
)

// parseContent extracts text and metadata from fetched HTML. Readable
// text comes from readability when the page yields an article, with a
// plain whole-body extraction as fallback for sparse pages like
// booking forms.
func parseContent(content *Content) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return err
	}

	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		content.MetaDescription = strings.TrimSpace(desc)
	}

	if img, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		content.OGImage = strings.TrimSpace(img)
	}

	content.Text = readableText(content.HTML, content.URL)
	if content.Text == "" {
		content.Text = bodyText(doc)
	}

	// Extract links
	baseURL, _ := url.Parse(content.URL)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" || strings.HasPrefix(href, "#") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		if !linkURL.IsAbs() && baseURL != nil {
			linkURL = baseURL.ResolveReference(linkURL)
		}

		content.Links = append(content.Links, linkURL.String())
	})

	return nil
}

// readableText runs readability extraction over the HTML.
func readableText(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		logger.Debug("readability extraction failed", "url", pageURL, "error", err)
		return ""
	}
	return cleanText(article.TextContent)
}

// bodyText extracts whole-body text with scripts and chrome removed.
func bodyText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, iframe, svg").Remove()

	var textParts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text != "" {
			textParts = append(textParts, text)
		}
	})
	return strings.Join(textParts, "\n")
}

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
