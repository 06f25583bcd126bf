package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"roborail-assistant/internal/domain/tool"
)

const defaultMaxResults = 8

// SearchHandler adapts the client to the file_search tool contract. The
// result carries a citations list so the stream can surface annotations
// without re-parsing the result body.
func SearchHandler(c *Client) tool.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		query, _ := args["query"].(string)
		storeID, _ := args["vector_store_id"].(string)
		if query == "" {
			return nil, fmt.Errorf("file_search: query is required")
		}
		if storeID == "" {
			return nil, fmt.Errorf("file_search: vector_store_id is required")
		}

		resp, err := c.Search(ctx, storeID, SearchRequest{
			Query:         query,
			MaxNumResults: defaultMaxResults,
		})
		if err != nil {
			return nil, err
		}

		results := make([]map[string]any, 0, len(resp.Data))
		citations := make([]map[string]any, 0, len(resp.Data))
		for i, r := range resp.Data {
			title := r.Filename
			if title == "" {
				title = fmt.Sprintf("File %d", i+1)
			}
			results = append(results, map[string]any{
				"file_id":  r.FileID,
				"filename": r.Filename,
				"score":    r.Score,
				"content":  joinChunks(r.Content),
			})
			citations = append(citations, map[string]any{
				"type":     "file_citation",
				"fileId":   r.FileID,
				"filename": title,
				"index":    i,
				"title":    title,
			})
		}

		return map[string]any{
			"query":     query,
			"results":   results,
			"citations": citations,
		}, nil
	}
}

func joinChunks(chunks []ContentChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if ch.Text != "" {
			parts = append(parts, ch.Text)
		}
	}
	return strings.Join(parts, "\n")
}
