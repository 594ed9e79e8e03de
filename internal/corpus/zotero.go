// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/litdigest/pkg/types"
)

// zoteroAPIBase is the Zotero web API root. Declared as a var so tests can
// substitute an httptest server.
var zoteroAPIBase = "https://api.zotero.org"

// zoteroPageSize is the API's maximum page size.
const zoteroPageSize = 100

// ZoteroProvider pulls the corpus from a user's Zotero library. Attachments
// and notes are skipped; every other top-level item with a title or
// abstract contributes one corpus entry.
type ZoteroProvider struct {
	UserID string
	APIKey string

	// Client defaults to a 30s-timeout http.Client when nil.
	Client *http.Client
}

// ListItems pages through the library's top-level items.
func (p *ZoteroProvider) ListItems(ctx context.Context) ([]types.CorpusItem, error) {
	if p.UserID == "" || p.APIKey == "" {
		return nil, fmt.Errorf("zotero user ID and API key are required")
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var items []types.CorpusItem
	for start := 0; ; start += zoteroPageSize {
		url := fmt.Sprintf("%s/users/%s/items/top?format=json&limit=%d&start=%d",
			zoteroAPIBase, p.UserID, zoteroPageSize, start)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Zotero-API-Key", p.APIKey)
		req.Header.Set("Zotero-API-Version", "3")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("zotero request: %w", err)
		}

		var page []zoteroItem
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("parsing zotero response: %w", decodeErr)
		}

		for _, it := range page {
			if it.Data.ItemType == "attachment" || it.Data.ItemType == "note" {
				continue
			}
			if it.Data.Title == "" && it.Data.AbstractNote == "" {
				continue
			}
			items = append(items, types.CorpusItem{
				Title:    it.Data.Title,
				Abstract: it.Data.AbstractNote,
			})
		}

		if len(page) < zoteroPageSize {
			return items, nil
		}
	}
}

// Zotero API JSON structures.
type zoteroItem struct {
	Data zoteroItemData `json:"data"`
}

type zoteroItemData struct {
	ItemType     string `json:"itemType"`
	Title        string `json:"title"`
	AbstractNote string `json:"abstractNote"`
}
