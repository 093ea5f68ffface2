package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

type fakeRepo struct {
	docs map[string]*domain.Document

	beginProcessingWon bool
	beginProcessingErr error
	getByIDErr         error

	createdDocs     []*domain.Document
	beginCalls      []string
	savedResults    map[string]domain.AnalysisResult
	savedEntities   map[string]string
	failedCalls     []string
	markViewedFirst bool
	markViewedCalls []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:               map[string]*domain.Document{},
		beginProcessingWon: true,
		markViewedFirst:    true,
		savedResults:       map[string]domain.AnalysisResult{},
		savedEntities:      map[string]string{},
	}
}

func (f *fakeRepo) Create(_ context.Context, doc *domain.Document) error {
	f.createdDocs = append(f.createdDocs, doc)
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id "+id))
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeRepo) BeginProcessing(_ context.Context, id string) (bool, error) {
	f.beginCalls = append(f.beginCalls, id)
	if f.beginProcessingErr != nil {
		return false, f.beginProcessingErr
	}
	if f.beginProcessingWon {
		if doc, ok := f.docs[id]; ok {
			doc.Status = domain.StatusProcessing
		}
	}
	return f.beginProcessingWon, nil
}

func (f *fakeRepo) SaveAnalysis(_ context.Context, id string, result domain.AnalysisResult, entitiesJSON string) error {
	f.savedResults[id] = result
	f.savedEntities[id] = entitiesJSON
	if doc, ok := f.docs[id]; ok {
		doc.Status = domain.StatusCompleted
		doc.DocumentType = result.DocumentType
		doc.Summary = result.Summary
		doc.EntitiesJSON = entitiesJSON
	}
	return nil
}

func (f *fakeRepo) MarkAnalysisFailed(_ context.Context, id string) error {
	f.failedCalls = append(f.failedCalls, id)
	if doc, ok := f.docs[id]; ok {
		doc.Status = domain.StatusFailed
		doc.DocumentType = ""
		doc.Summary = ""
		doc.EntitiesJSON = ""
		doc.Analyzed = false
	}
	return nil
}

func (f *fakeRepo) MarkViewed(_ context.Context, id string) (bool, error) {
	f.markViewedCalls = append(f.markViewedCalls, id)
	if doc, ok := f.docs[id]; ok {
		doc.Viewed = true
	}
	return f.markViewedFirst, nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishAnalysisRequested(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeAnalysisRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeStorage struct {
	putKeys []string
	putErr  error
}

func (f *fakeStorage) Put(_ context.Context, bucket, key string, _ []byte, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return bucket + "/" + key, nil
}

func (f *fakeStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not stored")
}

type fakeAnalyzer struct {
	result domain.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(context.Context, domain.AnalysisInput) (domain.AnalysisResult, error) {
	if f.err != nil {
		return domain.DefaultAnalysisResult(), f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	text           string
	containsImages bool
	imageCount     int
}

func (f *fakeExtractor) Extract(context.Context, []byte) (string, bool, int) {
	return f.text, f.containsImages, f.imageCount
}
