package index

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/dotdex/dotdex/internal/domain"
)

// MaxSearchBatchSize is the maximum number of documents per index batch.
const MaxSearchBatchSize = 100

// CreateSearchMapping creates the Bleve index mapping for command documents.
func CreateSearchMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Name - analyzed so partial words match, stored for retrieval
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	nameField.Store = true
	docMapping.AddFieldMappingsAt(domain.CommandFieldName, nameField)

	// Description and code - analyzed for full-text search
	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = standard.Name
	descField.Store = true
	docMapping.AddFieldMappingsAt(domain.CommandFieldDescription, descField)

	codeField := bleve.NewTextFieldMapping()
	codeField.Analyzer = standard.Name
	codeField.Store = true
	codeField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.CommandFieldCode, codeField)

	// Kind, category, source path - keyword (not analyzed), stored
	for _, field := range []string{domain.CommandFieldKind, domain.CommandFieldCategory, domain.CommandFieldSourcePath} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// ID - stored but not indexed (we use the document ID)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.CommandFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// RebuildSearchIndex replaces the index at path with the given command set.
// The index is derived data; it is always rebuilt from scratch after a run.
func RebuildSearchIndex(path string, commands []domain.Command) (err error) {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove old search index: %w", err)
	}

	index, err := bleve.New(path, CreateSearchMapping())
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	batch := index.NewBatch()
	batchSize := 0

	for _, c := range commands {
		doc := domain.CommandDocument{
			ID:          c.Key().String(),
			Name:        c.Name,
			Kind:        string(c.Kind),
			Category:    c.Category,
			Description: c.Description,
			Code:        c.Code,
			SourcePath:  c.SourcePath,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			continue
		}
		batchSize++

		if batchSize >= MaxSearchBatchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("batch index failed: %w", err)
			}
			batch = index.NewBatch()
			batchSize = 0
		}
	}

	if batchSize > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("final batch index failed: %w", err)
		}
	}

	return nil
}

// OpenSearchIndex opens an existing index for reading.
func OpenSearchIndex(path string) (bleve.Index, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index (run 'dotdex index' first): %w", err)
	}
	return index, nil
}

// SearchRequest describes one full-text search over the command index.
type SearchRequest struct {
	Query    string
	Category string
	Kind     string
	Limit    int
}

// SearchHit is one search result with its stored fields.
type SearchHit struct {
	ID          string
	Name        string
	Kind        string
	Category    string
	Description string
	Code        string
	SourcePath  string
	Score       float64
}

// Search executes a full-text query against an open index.
func Search(index bleve.Index, req SearchRequest) ([]SearchHit, error) {
	searchQuery := buildQuery(req)

	searchReq := bleve.NewSearchRequest(searchQuery)
	searchReq.Size = req.Limit
	if searchReq.Size <= 0 {
		searchReq.Size = 20
	}
	searchReq.Fields = []string{
		domain.CommandFieldName, domain.CommandFieldKind, domain.CommandFieldCategory,
		domain.CommandFieldDescription, domain.CommandFieldCode, domain.CommandFieldSourcePath,
	}

	results, err := index.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		h.Name, _ = hit.Fields[domain.CommandFieldName].(string)
		h.Kind, _ = hit.Fields[domain.CommandFieldKind].(string)
		h.Category, _ = hit.Fields[domain.CommandFieldCategory].(string)
		h.Description, _ = hit.Fields[domain.CommandFieldDescription].(string)
		h.Code, _ = hit.Fields[domain.CommandFieldCode].(string)
		h.SourcePath, _ = hit.Fields[domain.CommandFieldSourcePath].(string)
		hits = append(hits, h)
	}
	return hits, nil
}

// buildQuery constructs a Bleve query from a search request.
func buildQuery(req SearchRequest) query.Query {
	nameQuery := bleve.NewMatchQuery(req.Query)
	nameQuery.SetField(domain.CommandFieldName)
	nameQuery.SetBoost(5.0)

	descQuery := bleve.NewMatchQuery(req.Query)
	descQuery.SetField(domain.CommandFieldDescription)
	descQuery.SetBoost(2.0)

	codeQuery := bleve.NewMatchQuery(req.Query)
	codeQuery.SetField(domain.CommandFieldCode)

	searchQuery := bleve.NewDisjunctionQuery(nameQuery, descQuery, codeQuery)

	if req.Category == "" && req.Kind == "" {
		return searchQuery
	}

	must := []query.Query{searchQuery}

	if req.Category != "" {
		catQuery := bleve.NewTermQuery(req.Category)
		catQuery.SetField(domain.CommandFieldCategory)
		must = append(must, catQuery)
	}

	if req.Kind != "" {
		kindQuery := bleve.NewTermQuery(req.Kind)
		kindQuery.SetField(domain.CommandFieldKind)
		must = append(must, kindQuery)
	}

	return bleve.NewConjunctionQuery(must...)
}
