package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"go-homereel/types"
)

// RenderStore persists finished render records. Satisfies
// pipeline.RecordStore.
type RenderStore struct {
	client *firestore.Client
}

func NewRenderStore(client *firestore.Client) *RenderStore {
	return &RenderStore{client: client}
}

// SaveRender writes the record keyed by its render fingerprint, so a
// re-render of the same timeline overwrites rather than duplicates.
func (s *RenderStore) SaveRender(ctx context.Context, rec types.RenderRecord) (string, error) {
	docID := rec.Fingerprint
	if docID == "" {
		docID = rec.ID
	}
	_, err := s.client.Collection("renders").Doc(docID).Set(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save render %s: %w", docID, err)
	}
	return docID, nil
}

// GetRender looks a record up by fingerprint.
func (s *RenderStore) GetRender(ctx context.Context, fingerprint string) (types.RenderRecord, error) {
	doc, err := s.client.Collection("renders").Doc(fingerprint).Get(ctx)
	if err != nil {
		return types.RenderRecord{}, fmt.Errorf("get render %s: %w", fingerprint, err)
	}

	var rec types.RenderRecord
	if err := doc.DataTo(&rec); err != nil {
		return types.RenderRecord{}, fmt.Errorf("decode render %s: %w", fingerprint, err)
	}
	rec.ID = doc.Ref.ID
	return rec, nil
}

// ListRecentRenders returns the newest records first.
func (s *RenderStore) ListRecentRenders(ctx context.Context, limit int) ([]types.RenderRecord, error) {
	var records []types.RenderRecord

	iter := s.client.Collection("renders").
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating renders: %w", err)
		}

		var rec types.RenderRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("error converting document %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		records = append(records, rec)
	}

	return records, nil
}
