package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-homereel/types"
)

// LocationStore is the Firestore-backed write-through cache for geocoded
// addresses. It satisfies geocode.LocationStore, keyed by the normalized
// address hashed into a document id.
type LocationStore struct {
	client *firestore.Client
}

func NewLocationStore(client *firestore.Client) *LocationStore {
	return &LocationStore{client: client}
}

func (s *LocationStore) GetLocation(ctx context.Context, key string) (types.Location, bool, error) {
	doc, err := s.client.Collection("locations").Doc(HashString(key)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Location{}, false, nil
		}
		return types.Location{}, false, fmt.Errorf("get location %s: %w", key, err)
	}

	var loc types.Location
	if err := doc.DataTo(&loc); err != nil {
		return types.Location{}, false, fmt.Errorf("decode location %s: %w", key, err)
	}
	return loc, true, nil
}

func (s *LocationStore) SaveLocation(ctx context.Context, key string, loc types.Location) error {
	_, err := s.client.Collection("locations").Doc(HashString(key)).Set(ctx, loc)
	if err != nil {
		return fmt.Errorf("save location %s: %w", key, err)
	}
	return nil
}
