package xrates

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	historicalPath = "/historical/"
	fromParam      = "from"
	amountParam    = "amount"
	dateParam      = "date"
	dateLayout     = "2006-01-02"

	// the first table on the page is the top-10 summary
	rateTableIndex = 1
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrNoRateTable      = errors.New("rate table not found")
	ErrMissingColumns   = errors.New("rate table columns not found")
	ErrUnknownBase      = errors.New("no display name for base currency")
)

// Table maps a currency display name to the amount of that currency one unit of base buys.
type Table map[string]float64

type config interface {
	URL() string
	Timeout() time.Duration
	UserAgent() string
}

type nameResolver interface {
	Name(code string) (string, bool)
}

type Client struct {
	client    *http.Client
	baseURL   string
	userAgent string
	names     nameResolver
}

func New(config config, names nameResolver) *Client {
	return &Client{
		client:    &http.Client{Timeout: config.Timeout()},
		baseURL:   strings.TrimRight(config.URL(), "/"),
		userAgent: config.UserAgent(),
		names:     names,
	}
}

// Fetch downloads the historical rates page for one date and extracts the full rates table.
func (c *Client) Fetch(ctx context.Context, base string, date time.Time) (Table, error) {
	nameHeader, rateHeader, err := c.columnHeaders(base)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(base, date), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "get historical page")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "%d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return parseTable(doc, nameHeader, rateHeader)
}

func (c *Client) pageURL(base string, date time.Time) string {
	q := url.Values{}
	q.Set(fromParam, base)
	q.Set(amountParam, "1")
	q.Set(dateParam, date.Format(dateLayout))
	return c.baseURL + historicalPath + "?" + q.Encode()
}

// columnHeaders returns the headers the page prints for the requested base,
// e.g. "US Dollar" and "1.00 USD".
func (c *Client) columnHeaders(base string) (string, string, error) {
	name, ok := c.names.Name(base)
	if !ok {
		return "", "", errors.Wrap(ErrUnknownBase, base)
	}
	return name, fmt.Sprintf("1.00 %s", base), nil
}

func parseTable(doc *goquery.Document, nameHeader, rateHeader string) (Table, error) {
	tables := doc.Find("table")
	if tables.Length() <= rateTableIndex {
		return nil, ErrNoRateTable
	}
	rows := tables.Eq(rateTableIndex).Find("tr")

	nameIdx, rateIdx := -1, -1
	rows.First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		switch strings.TrimSpace(cell.Text()) {
		case nameHeader:
			nameIdx = i
		case rateHeader:
			rateIdx = i
		}
	})
	if nameIdx < 0 || rateIdx < 0 {
		return nil, errors.Wrapf(ErrMissingColumns, "%q, %q", nameHeader, rateHeader)
	}

	table := make(Table)
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= nameIdx || cells.Length() <= rateIdx {
			return
		}
		name := strings.TrimSpace(cells.Eq(nameIdx).Text())
		raw := strings.ReplaceAll(strings.TrimSpace(cells.Eq(rateIdx).Text()), ",", "")
		rate, err := strconv.ParseFloat(raw, 64)
		if name == "" || err != nil {
			return
		}
		table[name] = rate
	})
	return table, nil
}
