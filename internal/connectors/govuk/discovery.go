package govuk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/oarkflow/json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// pageSize is the search API page size.
const pageSize = 100

// kindSpec describes how one publication kind is discovered.
type kindSpec struct {
	kind  domain.DocumentKind
	query string
	match func(title string) bool
}

var kinds = []kindSpec{
	{
		kind:  domain.DocumentKindMinisterial,
		query: "ministerial meetings transparency",
		match: func(title string) bool {
			return strings.Contains(title, "meeting") && !strings.Contains(title, "senior official")
		},
	},
	{
		kind:  domain.DocumentKindSeniorOfficials,
		query: "senior officials meetings transparency",
		match: func(title string) bool {
			return strings.Contains(title, "meeting") && strings.Contains(title, "senior official")
		},
	},
}

// skippedDocuments mark attachments that are not meetings returns.
var skippedDocuments = []string{"travel", "gift", "hospitality", "expense"}

type organisation struct {
	Title string `json:"title"`
}

type publication struct {
	Title           string              `json:"title"`
	Link            string              `json:"link"`
	PublicTimestamp string              `json:"public_timestamp"`
	Organisations   []organisation      `json:"organisations"`
	Kind            domain.DocumentKind `json:"kind"`
}

type searchResponse struct {
	Results []publication `json:"results"`
	Total   int           `json:"total"`
}

type contentResponse struct {
	Details struct {
		Documents   []string `json:"documents"`
		Attachments []struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"attachments"`
	} `json:"details"`
	Links struct {
		Organisations []organisation `json:"organisations"`
	} `json:"links"`
}

// discoverKind pages the search API until results run out, the reported
// total is reached, or maxResults publications have been inspected.
func (c *Connector) discoverKind(ctx context.Context, pk kindSpec, maxResults int) ([]publication, error) {
	var pubs []publication
	for start := 0; start < maxResults; start += pageSize {
		q := url.Values{
			"q":             {pk.query},
			"filter_format": {"transparency"},
			"count":         {strconv.Itoa(pageSize)},
			"start":         {strconv.Itoa(start)},
			"fields":        {"title,link,public_timestamp,organisations"},
		}

		name := fmt.Sprintf("search-%s-%d", pk.kind, start)
		body, err := c.client.SearchCached(ctx, c.cache, domain.JurisdictionUK, name, c.cfg.SearchURL, q)
		if err != nil {
			if start == 0 {
				return nil, fmt.Errorf("search %s publications: %w", pk.kind, err)
			}
			logger.Warn("govuk: stopping %s discovery at offset %d: %v", pk.kind, start, err)
			break
		}

		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode %s search page: %w", pk.kind, err)
		}
		if len(page.Results) == 0 {
			break
		}

		for _, p := range page.Results {
			if pk.match(strings.ToLower(p.Title)) {
				p.Kind = pk.kind
				pubs = append(pubs, p)
			}
		}

		if start+pageSize >= page.Total {
			break
		}
	}
	logger.Debug("govuk: %d %s publications", len(pubs), pk.kind)
	return pubs, nil
}

// resolve returns the CSV documents attached to a publication.
func (c *Connector) resolve(ctx context.Context, pub publication) ([]domain.RawDocumentRef, error) {
	path := pub.Link
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	body, err := c.client.SearchCached(ctx, c.cache, domain.JurisdictionUK, "content"+path, c.cfg.ContentURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch content %s: %w", path, err)
	}

	var content contentResponse
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("decode content %s: %w", path, err)
	}

	department := departmentOf(content.Links.Organisations, pub.Organisations, path)

	var urls []string
	for _, html := range content.Details.Documents {
		urls = append(urls, csvLinks(html)...)
	}
	for _, a := range content.Details.Attachments {
		urls = append(urls, a.URL)
	}

	var refs []domain.RawDocumentRef
	seen := make(map[string]bool)
	for _, u := range urls {
		u = c.absolute(u)
		if !isMeetingsCSV(u) || seen[u] {
			continue
		}
		seen[u] = true
		refs = append(refs, domain.RawDocumentRef{
			Jurisdiction:    domain.JurisdictionUK,
			DepartmentLabel: department,
			DocumentURL:     u,
			DocumentKind:    pub.Kind,
		})
	}
	return refs, nil
}

// csvLinks extracts CSV hrefs from a documents HTML fragment.
func csvLinks(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.Contains(strings.ToLower(href), ".csv") {
			links = append(links, strings.TrimSpace(href))
		}
	})
	return links
}

func (c *Connector) absolute(u string) string {
	if strings.HasPrefix(u, "/") {
		return c.cfg.BaseURL + u
	}
	return u
}

func isMeetingsCSV(u string) bool {
	lower := strings.ToLower(u)
	if !strings.Contains(lower, ".csv") {
		return false
	}
	for _, s := range skippedDocuments {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return true
}

var titleCase = cases.Title(language.BritishEnglish)

// departmentOf prefers the content API organisation, then the search
// result organisation, then a name derived from the publication path.
func departmentOf(content, search []organisation, path string) string {
	for _, orgs := range [][]organisation{content, search} {
		if len(orgs) > 0 && orgs[0].Title != "" {
			return orgs[0].Title
		}
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	slug := segments[len(segments)-1]
	if slug == "" {
		return domain.UnknownLabel
	}
	return titleCase.String(strings.ReplaceAll(slug, "-", " "))
}
