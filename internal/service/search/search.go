package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Query struct {
	Text     string
	Category string
	// Active filters on is_active when set.
	Active *bool
	From   int
	Size   int
}

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

type document struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "double"},
      "is_active":   {"type": "boolean"},
      "created_at":  {"type": "date"}
    }
  }
}`

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("search %s: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.ES.Indices.Exists([]string{i.Name}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.ES.Indices.Create(i.Name,
		i.ES.Indices.Create.WithContext(ctx),
		i.ES.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("search create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (i *Index) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("search encode: %w", err)
	}

	res, err := i.ES.Index(i.Name, &buf,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("search index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (i *Index) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := i.ES.Delete(i.Name, id.String(), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

func buildQuery(q Query) map[string]any {
	var filter []any
	if q.Active != nil {
		filter = append(filter, map[string]any{"term": map[string]any{"is_active": *q.Active}})
	}
	if q.Category != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category": q.Category}})
	}

	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     q.Text,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"from":    q.From,
		"size":    q.Size,
		"_source": false,
	}
}

// Search returns the total hit count and the ids of the requested page in score order.
func (i *Index) Search(ctx context.Context, q Query) (int64, []uuid.UUID, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(q)); err != nil {
		return 0, nil, fmt.Errorf("search encode: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
		i.ES.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("query", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return r.Hits.Total.Value, ids, nil
}
