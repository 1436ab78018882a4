package workua

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Sentinel defaults for listing-card fields the markup did not provide.
// Kept as the site's scraping consumers historically expect them.
const (
	DefaultTitle      = "No title"
	DefaultName       = "No name"
	DefaultAge        = "No age"
	DefaultLocation   = "Unknown location"
	DefaultEducation  = "No education"
	DefaultLastUpdate = "Unknown date"

	// Ukrainian "years" token that marks the age span inside a card.
	ageMarker = "років"

	cardSelector = `div[class*="resume-link"]`
)

// ListingRecord is one summary card from the paginated search results.
// Link is an absolute URL, or empty when the card carried no usable href.
type ListingRecord struct {
	Title      string `json:"title"`
	Name       string `json:"name"`
	Age        string `json:"age,omitempty"`
	Link       string `json:"link,omitempty"`
	Location   string `json:"location,omitempty"`
	Education  string `json:"education,omitempty"`
	LastUpdate string `json:"last_update,omitempty"`
}

// Scan walks search-result pages for the query, starting at page 1, and
// returns one record per result card. Scanning stops on the first page that
// returns a non-success status or contains no cards; both are normal
// termination, not errors. A transport failure also stops the scan: the
// records accumulated so far are returned together with the error so callers
// can decide whether a partial result is acceptable.
func (c *Client) Scan(ctx context.Context, query string) ([]*ListingRecord, error) {
	records := make([]*ListingRecord, 0)

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("search", query)
		q.Set("page", strconv.Itoa(page))
		q.Set("_pjax", "#pjax")

		resp, err := c.get(ctx, c.BaseURL+resumesPath, q.Encode())
		if err != nil {
			return records, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			c.logger.Debug("stopping the scan",
				zap.Int("page", page),
				zap.String("status", resp.Status),
			)
			return records, nil
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return records, err
		}

		cards := doc.Find(cardSelector)
		if cards.Length() == 0 {
			c.logger.Debug("stopping the scan",
				zap.Int("page", page),
				zap.String("reason", "no result cards on page"),
			)
			return records, nil
		}

		cards.Each(func(_ int, card *goquery.Selection) {
			records = append(records, c.extractCard(card))
		})
	}
}

// extractCard pulls the summary fields out of a single result card. Missing
// fields never abort the card; the sentinel defaults apply instead.
func (c *Client) extractCard(card *goquery.Selection) *ListingRecord {
	record := &ListingRecord{
		Title:      DefaultTitle,
		Name:       DefaultName,
		Age:        DefaultAge,
		Location:   DefaultLocation,
		Education:  DefaultEducation,
		LastUpdate: DefaultLastUpdate,
	}

	heading := card.Find("h2").First()
	if title := strings.TrimSpace(heading.Text()); title != "" {
		record.Title = title
	}

	if href, ok := heading.Find("a[href]").First().Attr("href"); ok {
		record.Link = c.BaseURL + href
	}

	// Location and age share one line in the card markup.
	locationLine := card.Find("p.mt-xs.mb-0").First()
	if locationLine.Length() > 0 {
		segments := strings.Split(strings.TrimSpace(locationLine.Text()), ",")
		if location := strings.TrimSpace(segments[len(segments)-1]); location != "" {
			record.Location = location
		}

		locationLine.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := strings.TrimSpace(span.Text())
			if strings.Contains(text, ageMarker) {
				record.Age = text
				return false
			}
			return true
		})
	}

	if name := strings.TrimSpace(card.Find("span.strong-600").First().Text()); name != "" {
		record.Name = name
	}

	if education := strings.TrimSpace(card.Find("p.mb-0.mt-xs.text-default-7").First().Text()); education != "" {
		record.Education = education
	}

	if updated := strings.TrimSpace(card.Find("time").First().Text()); updated != "" {
		record.LastUpdate = updated
	}

	return record
}
