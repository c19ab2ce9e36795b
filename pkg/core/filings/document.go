package filings

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fetchDocumentText downloads a filing's primary document and reduces it
// to plain text for the extraction collaborator.
func (c *Client) fetchDocumentText(ctx context.Context, cik, accession, primaryDoc string) (string, error) {
	// Archive paths use the accession number without dashes.
	accessionNoDashes := strings.ReplaceAll(accession, "-", "")
	url := fmt.Sprintf(archiveURL, strings.TrimLeft(cik, "0"), accessionNoDashes, primaryDoc)

	body, err := c.get(ctx, url, "text/html")
	if err != nil {
		return "", fmt.Errorf("failed to fetch filing document: %w", err)
	}

	text, err := documentToText(string(body))
	if err != nil {
		return "", err
	}
	if len(text) < 500 {
		return "", fmt.Errorf("filing document reduced to insufficient content (%d bytes)", len(text))
	}
	return text, nil
}

// documentToText strips a filing's HTML down to readable text. Tables keep
// cell boundaries as pipes so the extractor still sees row structure.
func documentToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse filing HTML: %w", err)
	}

	doc.Find("script, style, head").Remove()

	// Preserve table structure: join cells with pipes, rows with newlines.
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		row.SetText(strings.Join(cells, " | ") + "\n")
	})

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	// Collapse runs of blank lines left behind by block elements.
	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}
