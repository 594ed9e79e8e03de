// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litdigest/internal/httputil"
	"github.com/pdiddy/litdigest/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

const (
	defaultPubMedMaxIDs = 200
	pubmedFetchBatch    = 50
)

// PubMedAdapter queries NCBI E-utilities: esearch for recent PMIDs matching
// the configured term, then efetch in batches for the article records.
type PubMedAdapter struct {
	client *httputil.Client
	cfg    types.PubMedConfig
}

// NewPubMed builds the PubMed adapter.
func NewPubMed(client *httputil.Client, cfg types.PubMedConfig) *PubMedAdapter {
	return &PubMedAdapter{client: client, cfg: cfg}
}

// Kind returns the source identifier.
func (a *PubMedAdapter) Kind() types.SourceKind { return types.SourcePubMed }

// Enabled reports whether a search term is configured.
func (a *PubMedAdapter) Enabled() bool { return strings.TrimSpace(a.cfg.Query) != "" }

// FetchSince searches for records entered into PubMed since the cutoff and
// fetches their details. Articles that fail to parse are dropped and counted.
func (a *PubMedAdapter) FetchSince(ctx context.Context, cutoff time.Time) ([]types.CandidateRecord, int, error) {
	pmids, err := a.search(ctx, cutoff)
	if err != nil {
		return nil, 0, err
	}
	if len(pmids) == 0 {
		return nil, 0, nil
	}

	var records []types.CandidateRecord
	dropped := 0
	for start := 0; start < len(pmids); start += pubmedFetchBatch {
		end := start + pubmedFetchBatch
		if end > len(pmids) {
			end = len(pmids)
		}
		batch, batchDropped, err := a.fetchBatch(ctx, pmids[start:end])
		if err != nil {
			return records, dropped, err
		}
		records = append(records, batch...)
		dropped += batchDropped
	}
	return records, dropped, nil
}

// search runs esearch and returns the matching PMIDs, newest first.
func (a *PubMedAdapter) search(ctx context.Context, cutoff time.Time) ([]string, error) {
	maxIDs := a.cfg.MaxIDs
	if maxIDs <= 0 {
		maxIDs = defaultPubMedMaxIDs
	}

	// reldate is expressed in whole days; round the lookback up so the
	// window never undershoots the cutoff.
	days := int(time.Since(cutoff).Hours()/24) + 1

	params := url.Values{
		"db":       {"pubmed"},
		"term":     {a.cfg.Query},
		"retmax":   {fmt.Sprintf("%d", maxIDs)},
		"retmode":  {"json"},
		"sort":     {"date"},
		"datetype": {"edat"},
		"reldate":  {fmt.Sprintf("%d", days)},
	}
	if a.cfg.APIKey != "" {
		params.Set("api_key", a.cfg.APIKey)
	}

	resp, err := a.client.Fetch(ctx, pubmedSearchBase+"?"+params.Encode(), a.Kind())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr pubmedSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, types.NewFailure(types.FailUnavailable, a.Kind(),
			fmt.Errorf("parsing esearch response: %w", err))
	}
	return sr.ESearchResult.IDList, nil
}

// fetchBatch runs efetch for up to pubmedFetchBatch PMIDs.
func (a *PubMedAdapter) fetchBatch(ctx context.Context, pmids []string) ([]types.CandidateRecord, int, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	}
	if a.cfg.APIKey != "" {
		params.Set("api_key", a.cfg.APIKey)
	}

	resp, err := a.client.Fetch(ctx, pubmedFetchBase+"?"+params.Encode(), a.Kind())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, types.NewFailure(types.FailUnavailable, a.Kind(),
			fmt.Errorf("reading efetch response: %w", err))
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, 0, types.NewFailure(types.FailUnavailable, a.Kind(),
			fmt.Errorf("parsing efetch response: %w", err))
	}

	var records []types.CandidateRecord
	dropped := 0
	for _, article := range set.Articles {
		r, ok := parsePubMedArticle(article)
		if !ok {
			dropped++
			continue
		}
		records = append(records, r)
	}
	return records, dropped, nil
}

func parsePubMedArticle(article pubmedArticle) (types.CandidateRecord, bool) {
	title := strings.TrimSpace(article.Citation.Article.Title)
	pmid := strings.TrimSpace(article.Citation.PMID)
	if title == "" || pmid == "" {
		return types.CandidateRecord{}, false
	}

	published, ok := parsePubDate(article.Citation.Article.Journal.Issue.PubDate)
	if !ok {
		return types.CandidateRecord{}, false
	}

	r := types.CandidateRecord{
		SourceID:    pmid,
		SourceKind:  types.SourcePubMed,
		Title:       title,
		Abstract:    joinAbstract(article.Citation.Article.Abstract.Sections),
		PublishedAt: published,
		ExternalURL: "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		RawIdentifiers: map[types.IdentifierKind]string{
			types.IDKindPMID: pmid,
		},
	}

	for _, au := range article.Citation.Article.AuthorList.Authors {
		switch {
		case au.ForeName != "" && au.LastName != "":
			r.Authors = append(r.Authors, au.ForeName+" "+au.LastName)
		case au.LastName != "":
			r.Authors = append(r.Authors, au.LastName)
		}
	}

	for _, id := range article.Data.IDs {
		switch id.Type {
		case "doi":
			r.RawIdentifiers[types.IDKindDOI] = strings.TrimSpace(id.Value)
		case "pmc":
			r.RawIdentifiers[types.IDKindPMCID] = strings.TrimSpace(id.Value)
		}
	}
	return r, true
}

// joinAbstract concatenates structured abstract sections, prefixing each
// labelled section with its label (e.g. "METHODS: ...").
func joinAbstract(sections []pubmedAbstractText) string {
	var parts []string
	for _, s := range sections {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if s.Label != "" {
			parts = append(parts, s.Label+": "+text)
		} else {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// parsePubDate handles the precision levels PubMed emits: full date with a
// named month, year and month, or year only.
func parsePubDate(d pubmedPubDate) (time.Time, bool) {
	if d.Year == "" {
		return time.Time{}, false
	}
	for _, layout := range []struct{ layout, value string }{
		{"2006-Jan-2", fmt.Sprintf("%s-%s-%s", d.Year, d.Month, d.Day)},
		{"2006-1-2", fmt.Sprintf("%s-%s-%s", d.Year, d.Month, d.Day)},
		{"2006-Jan", fmt.Sprintf("%s-%s", d.Year, d.Month)},
		{"2006-1", fmt.Sprintf("%s-%s", d.Year, d.Month)},
		{"2006", d.Year},
	} {
		if t, err := time.Parse(layout.layout, layout.value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PubMed E-utilities response structures.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Sections []pubmedAbstractText `xml:"AbstractText"`
			} `xml:"Abstract"`
			AuthorList struct {
				Authors []pubmedAuthor `xml:"Author"`
			} `xml:"AuthorList"`
			Journal struct {
				Issue struct {
					PubDate pubmedPubDate `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	Data struct {
		IDs []pubmedArticleID `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

type pubmedAbstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedPubDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type pubmedArticleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}
