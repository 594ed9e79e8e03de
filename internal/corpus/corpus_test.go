// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFileProviderListItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	content := `- title: CRISPR gene editing in skin
  abstract: Keratinocyte editing approaches.
- title: Melanoma genomics
- title: ""
  abstract: ""
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := (&FileProvider{Path: path}).ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (blank entry skipped)", len(items))
	}
	if items[0].Title != "CRISPR gene editing in skin" {
		t.Errorf("items[0].Title = %q", items[0].Title)
	}
	if items[1].Abstract != "" {
		t.Errorf("items[1].Abstract = %q, want empty", items[1].Abstract)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	_, err := (&FileProvider{Path: "/does/not/exist.yaml"}).ListItems(context.Background())
	if err == nil {
		t.Error("expected error for missing corpus file")
	}
}

func TestZoteroProviderPagination(t *testing.T) {
	var starts []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Zotero-API-Key") != "zk" {
			t.Error("missing Zotero-API-Key header")
		}
		start := r.URL.Query().Get("start")
		starts = append(starts, start)

		if start == "0" {
			// Full page of items, one of them a note.
			fmt.Fprint(w, `[`)
			for i := 0; i < 99; i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"data":{"itemType":"journalArticle","title":"Paper %d","abstractNote":"A%d"}}`, i, i)
			}
			fmt.Fprint(w, `,{"data":{"itemType":"note","title":"","abstractNote":"private note"}}]`)
			return
		}
		fmt.Fprint(w, `[{"data":{"itemType":"preprint","title":"Last paper","abstractNote":""}}]`)
	}))
	defer ts.Close()

	oldBase := zoteroAPIBase
	zoteroAPIBase = ts.URL
	defer func() { zoteroAPIBase = oldBase }()

	p := &ZoteroProvider{UserID: "12345", APIKey: "zk", Client: ts.Client()}
	items, err := p.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 100 {
		t.Errorf("len(items) = %d, want 100 (99 + 1, note excluded)", len(items))
	}
	if len(starts) != 2 || starts[1] != "100" {
		t.Errorf("starts = %v, want [0 100]", starts)
	}
}

func TestZoteroProviderRequiresCredentials(t *testing.T) {
	p := &ZoteroProvider{}
	if _, err := p.ListItems(context.Background()); err == nil {
		t.Error("expected error without credentials")
	}
}

func TestStaticProvider(t *testing.T) {
	s := Static{{Title: "X"}}
	items, err := s.ListItems(context.Background())
	if err != nil || len(items) != 1 {
		t.Errorf("ListItems = %v, %v", items, err)
	}
}
