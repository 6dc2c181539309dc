package stickers

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/journalapp/journal-server/pkg/domain"
)

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Keyword so the category filter is an exact match.
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// buildIndex indexes stickers into a fresh in-memory index.
func buildIndex(stickers []domain.Sticker) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create sticker index: %w", err)
	}

	batch := index.NewBatch()
	for _, s := range stickers {
		doc := map[string]any{
			"name":     domain.FoldForSearch(s.Name),
			"tags":     domain.FoldForSearch(strings.Join(s.Tags, " ")),
			"category": s.Category,
		}
		if err := batch.Index(s.ID, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("index sticker %s: %w", s.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("commit sticker index: %w", err)
	}
	return index, nil
}

// buildSearchQuery matches whole words in name (boosted) or tags, and
// treats the last word as a prefix so results follow the user's typing.
func buildSearchQuery(text, category string) query.Query {
	text = domain.FoldForSearch(text)

	var should []query.Query

	nameMatch := bleve.NewMatchQuery(text)
	nameMatch.SetField("name")
	nameMatch.SetBoost(2)
	should = append(should, nameMatch)

	tagsMatch := bleve.NewMatchQuery(text)
	tagsMatch.SetField("tags")
	should = append(should, tagsMatch)

	if words := strings.Fields(text); len(words) > 0 {
		last := words[len(words)-1]
		for _, field := range []string{"name", "tags"} {
			prefix := bleve.NewPrefixQuery(last)
			prefix.SetField(field)
			should = append(should, prefix)
		}
	}

	var q query.Query = bleve.NewDisjunctionQuery(should...)
	if category != "" {
		term := bleve.NewTermQuery(category)
		term.SetField("category")
		q = bleve.NewConjunctionQuery(q, term)
	}
	return q
}

// searchIDs runs the query and returns matching sticker ids by score.
func searchIDs(ctx context.Context, index bleve.Index, text, category string, limit int) ([]string, error) {
	req := bleve.NewSearchRequestOptions(buildSearchQuery(text, category), limit, 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search stickers: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
