package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a job search. UserID is mandatory; every query is
// scoped to one user's documents.
type Params struct {
	UserID string
	Query  string

	// Filters
	StatusID string   // Exact status filter
	TagIDs   []string // Jobs must carry every listed tag

	// Pagination
	Limit  int
	Offset int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams(userID string) Params {
	return Params{
		UserID:    userID,
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single matching job.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Company    string            `json:"company"`
	Position   string            `json:"position"`
	Location   string            `json:"location,omitempty"`
	StatusID   string            `json:"status_id"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a job search for one user.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("company")
		searchRequest.Highlight.AddField("position")
		searchRequest.Highlight.AddField("location")
	}

	searchRequest.Fields = []string{
		"id", "company", "position", "location", "status_id", "tags",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if c, ok := hit.Fields["company"].(string); ok {
			h.Company = c
		}
		if p, ok := hit.Fields["position"].(string); ok {
			h.Position = p
		}
		if l, ok := hit.Fields["location"].(string); ok {
			h.Location = l
		}
		if st, ok := hit.Fields["status_id"].(string); ok {
			h.StatusID = st
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			h.Tags = []string{tags}
		case []interface{}:
			for _, t := range tags {
				if ts, ok := t.(string); ok {
					h.Tags = append(h.Tags, ts)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params. The user filter
// is always present; everything else is ANDed on top.
func buildSearchQuery(params Params) query.Query {
	userQuery := bleve.NewTermQuery(params.UserID)
	userQuery.SetField("user_id")

	queries := []query.Query{userQuery}

	if params.Query != "" {
		textQueries := []query.Query{}

		// Company match with highest boost.
		companyMatch := bleve.NewMatchQuery(params.Query)
		companyMatch.SetField("company")
		companyMatch.SetBoost(3.0)
		textQueries = append(textQueries, companyMatch)

		positionMatch := bleve.NewMatchQuery(params.Query)
		positionMatch.SetField("position")
		positionMatch.SetBoost(2.0)
		textQueries = append(textQueries, positionMatch)

		locationMatch := bleve.NewMatchQuery(params.Query)
		locationMatch.SetField("location")
		locationMatch.SetBoost(1.5)
		textQueries = append(textQueries, locationMatch)

		notesMatch := bleve.NewMatchQuery(params.Query)
		notesMatch.SetField("notes")
		textQueries = append(textQueries, notesMatch)

		// Fuzzy matching for typo tolerance on company.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("company")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("company")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.StatusID != "" {
		statusQuery := bleve.NewTermQuery(params.StatusID)
		statusQuery.SetField("status_id")
		queries = append(queries, statusQuery)
	}

	// Tag filters are conjunctive: a job must carry every requested tag.
	for _, tagID := range params.TagIDs {
		tagQuery := bleve.NewTermQuery(tagID)
		tagQuery.SetField("tags")
		queries = append(queries, tagQuery)
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
