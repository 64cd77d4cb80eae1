// Package catalog supplies the full activity candidate list to the
// ranker. The engine never filters at the storage layer; sources return
// the whole catalog and filtering happens in memory.
package catalog

import (
	"context"

	"github.com/kidspark/kidspark-engine/internal/model"
	"github.com/kidspark/kidspark-engine/internal/store"
)

// Source yields the full activity catalog.
type Source interface {
	GetAll(ctx context.Context) ([]model.Activity, error)
}

// StoreSource reads the catalog from the activities table.
type StoreSource struct {
	store store.Store
}

func NewStoreSource(s store.Store) *StoreSource {
	return &StoreSource{store: s}
}

func (s *StoreSource) GetAll(ctx context.Context) ([]model.Activity, error) {
	return s.store.Activities().List(ctx)
}
