package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ashwinyue/toolhub/internal/config"
	"github.com/ashwinyue/toolhub/internal/model"
)

// toolDocument 索引中的工具文档
type toolDocument struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle,omitempty"`
	Description    string   `json:"description"`
	Author         string   `json:"author,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	ToolType       string   `json:"tool_type,omitempty"`
	TechnologyUsed []string `json:"technology_used,omitempty"`
	ForWikis       []string `json:"for_wikis,omitempty"`
	Origin         string   `json:"origin"`
	Deprecated     bool     `json:"deprecated"`
	Experimental   bool     `json:"experimental"`
}

func newToolDocument(tool *model.Tool) toolDocument {
	return toolDocument{
		Name:           tool.Name,
		Title:          tool.Title,
		Subtitle:       tool.Subtitle,
		Description:    tool.Description,
		Author:         tool.Author,
		Keywords:       tool.Keywords,
		ToolType:       tool.ToolType,
		TechnologyUsed: tool.TechnologyUsed,
		ForWikis:       tool.ForWikis,
		Origin:         tool.Origin,
		Deprecated:     tool.Deprecated,
		Experimental:   tool.Experimental,
	}
}

// 索引映射
var toolsMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"name":            map[string]any{"type": "keyword"},
			"title":           map[string]any{"type": "text"},
			"subtitle":        map[string]any{"type": "text"},
			"description":     map[string]any{"type": "text"},
			"author":          map[string]any{"type": "text"},
			"keywords":        map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"tool_type":       map[string]any{"type": "keyword"},
			"technology_used": map[string]any{"type": "keyword"},
			"for_wikis":       map[string]any{"type": "keyword"},
			"origin":          map[string]any{"type": "keyword"},
			"deprecated":      map[string]any{"type": "boolean"},
			"experimental":    map[string]any{"type": "boolean"},
		},
	},
	"settings": map[string]any{
		"number_of_shards":   1,
		"number_of_replicas": 0,
	},
}

// Index Elasticsearch 中的工具索引
type Index struct {
	client *elasticsearch.Client
	name   string
}

// NewIndex 根据配置创建索引客户端
func NewIndex(cfg config.ElasticConfig) (*Index, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &Index{client: client, name: cfg.ToolsIndex()}, nil
}

// Name 索引名
func (i *Index) Name() string {
	return i.name
}

// EnsureIndex 索引不存在时创建
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.name}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(toolsMapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	req := esapi.IndicesCreateRequest{
		Index: i.name,
		Body:  bytes.NewReader(body),
	}
	res, err = req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}
	return nil
}

// Put 写入或覆盖工具文档
func (i *Index) Put(ctx context.Context, tool *model.Tool) error {
	body, err := json.Marshal(newToolDocument(tool))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: tool.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index %s: %w", tool.Name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index %s: %s", tool.Name, res.String())
	}
	return nil
}

// Remove 删除工具文档，文档不存在不视为错误
func (i *Index) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.name, DocumentID: id}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete %s: %s", id, res.String())
	}
	return nil
}

// Hits 一次检索命中的文档 ID（按相关度排序）与总数
type Hits struct {
	IDs   []string
	Total int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildQuery 构造检索请求体，空查询返回全部文档
func buildQuery(query string, offset, limit int) map[string]any {
	q := map[string]any{"match_all": map[string]any{}}
	if query != "" {
		q = map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^3", "name^2", "keywords^2", "subtitle", "description", "author"},
				"type":   "best_fields",
			},
		}
	}
	return map[string]any{
		"query":            q,
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
	}
}

// Search 检索工具
func (i *Index) Search(ctx context.Context, query string, offset, limit int) (*Hits, error) {
	body, err := json.Marshal(buildQuery(query, offset, limit))
	if err != nil {
		return nil, err
	}
	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.String())
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := &Hits{Total: parsed.Hits.Total.Value, IDs: make([]string, 0, len(parsed.Hits.Hits))}
	for _, h := range parsed.Hits.Hits {
		hits.IDs = append(hits.IDs, h.ID)
	}
	return hits, nil
}
