package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"gameforum/models"
	"gameforum/settings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const threadMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "content":     {"type": "text"},
      "category_id": {"type": "keyword"},
      "author_id":   {"type": "keyword"},
      "created_at":  {"type": "date"}
    }
  }
}`

// ThreadIndex is the full-text index of thread titles and bodies.
type ThreadIndex struct {
	client *elasticsearch.Client
	index  string
}

// ThreadDoc is the indexed form of a thread.
type ThreadDoc struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"category_id"`
	AuthorID   string    `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewThreadDoc(t *models.Thread) ThreadDoc {
	return ThreadDoc{
		Title:      t.Title,
		Content:    t.Content,
		CategoryID: t.CategoryID.String(),
		AuthorID:   t.AuthorID.String(),
		CreatedAt:  t.CreatedAt,
	}
}

func New(cfg *settings.ElasticsearchConfig) (*ThreadIndex, error) {
	if cfg == nil {
		return nil, fmt.Errorf("elasticsearch config is nil")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client failed: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = "gameforum-threads"
	}
	return &ThreadIndex{client: client, index: index}, nil
}

// EnsureIndex creates the index with its mapping unless it exists.
func (x *ThreadIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.client.Indices.Exists([]string{x.index}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s failed: %w", x.index, err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.client.Indices.Create(x.index,
		x.client.Indices.Create.WithContext(ctx),
		x.client.Indices.Create.WithBody(bytes.NewReader([]byte(threadMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %s failed: %w", x.index, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("create index %s failed: %s", x.index, res.Status())
	}
	zap.L().Info("elasticsearch index created", zap.String("index", x.index))
	return nil
}

func (x *ThreadIndex) Index(ctx context.Context, id models.ThreadID, doc ThreadDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal thread doc failed: %w", err)
	}
	res, err := x.client.Index(x.index, bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(id.String()),
	)
	if err != nil {
		return fmt.Errorf("index thread %d failed: %w", id, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("index thread %d failed: %s", id, res.Status())
	}
	return nil
}

// Delete removes a thread; a document that is already gone is fine.
func (x *ThreadIndex) Delete(ctx context.Context, id models.ThreadID) error {
	res, err := x.client.Delete(x.index, id.String(), x.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete thread %d from index failed: %w", id, err)
	}
	defer drain(res)
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete thread %d from index failed: %s", id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns the ids of the best matching threads, best first. Title
// matches weigh double.
func (x *ThreadIndex) Search(ctx context.Context, term string, limit int) ([]models.ThreadID, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  term,
				"fields": []string{"title^2", "content"},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal search query failed: %w", err)
	}

	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
		x.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search threads failed: %w", err)
	}
	defer drain(res)
	if res.IsError() {
		return nil, fmt.Errorf("search threads failed: %s", res.Status())
	}

	var out searchResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response failed: %w", err)
	}
	ids := make([]models.ThreadID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, models.ThreadID(id))
	}
	return ids, nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
