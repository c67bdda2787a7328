// Package search keeps a secondary Elasticsearch index of portfolio entries.
// PostgreSQL stays the source of truth; the index only serves searches.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "keyword"},
      "applicationId":    {"type": "keyword"},
      "influencerId":     {"type": "keyword"},
      "campaignId":       {"type": "keyword"},
      "campaignTitle":    {"type": "text"},
      "campaignCategory": {"type": "keyword"},
      "platform":         {"type": "keyword"},
      "contentUrl":       {"type": "keyword", "index": false},
      "completedAt":      {"type": "date"},
      "rating":           {"type": "integer"},
      "reviewText":       {"type": "text"},
      "isPublic":         {"type": "boolean"},
      "isFeatured":       {"type": "boolean"}
    }
  }
}`

type PortfolioIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewPortfolioIndex(client *elasticsearch.Client, index string, log logger.Logger) *PortfolioIndex {
	return &PortfolioIndex{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "portfolio-index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (p *PortfolioIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{p.index}}.Do(ctx, p.client)
	if err != nil {
		return errors.NewSearchIndexFailedError("check index", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: p.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, p.client)
	if err != nil {
		return errors.NewSearchIndexFailedError("create index", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewSearchIndexFailedError("create index", responseError(res))
	}
	p.logger.Info("portfolio index created", nil)
	return nil
}

// Index upserts the entry under its own id, so repeating it is harmless.
func (p *PortfolioIndex) Index(ctx context.Context, entry *models.PortfolioEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return errors.NewSearchIndexFailedError("encode portfolio entry", err)
	}

	res, err := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: entry.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, p.client)
	if err != nil {
		return errors.NewSearchIndexFailedError("index portfolio entry", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewSearchIndexFailedError("index portfolio entry", responseError(res))
	}
	return nil
}

func (p *PortfolioIndex) Search(ctx context.Context, q models.PortfolioQuery) ([]models.PortfolioEntry, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, errors.NewSearchIndexFailedError("encode query", err)
	}

	size := q.Limit
	res, err := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, p.client)
	if err != nil {
		return nil, errors.NewSearchIndexFailedError("search portfolio", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return []models.PortfolioEntry{}, nil
	}
	if res.IsError() {
		return nil, errors.NewSearchIndexFailedError("search portfolio", responseError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.PortfolioEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchIndexFailedError("decode search response", err)
	}

	entries := make([]models.PortfolioEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entries = append(entries, hit.Source)
	}
	return entries, nil
}

// buildQuery only ever matches public entries.
func buildQuery(q models.PortfolioQuery) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"isPublic": true}},
	}
	if q.InfluencerID != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"influencerId": q.InfluencerID}})
	}
	if q.Platform != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"platform": q.Platform}})
	}
	if q.Category != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"campaignCategory": q.Category}})
	}

	boolQuery := map[string]interface{}{"filter": filters}
	if q.Text != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"campaignTitle^2", "reviewText"},
					"type":   "best_fields",
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"isFeatured": "desc"},
			map[string]interface{}{"completedAt": "desc"},
		},
	}
}

func responseError(res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(raw)))
}
