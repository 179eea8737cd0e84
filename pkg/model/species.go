package model

import (
	"context"
	"fmt"

	regdb "github.com/regland/regland/pkg/db"
)

func (s *Store) Species(ctx context.Context) ([]regdb.Species, error) {
	species := []regdb.Species{}
	if err := s.db.ORM.WithContext(ctx).Order("species_id").Find(&species).Error; err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}
	return species, nil
}

func (s *Store) BiotypeCounts(ctx context.Context) ([]regdb.SpeciesBiotypeCount, error) {
	counts := []regdb.SpeciesBiotypeCount{}
	if err := s.db.ORM.WithContext(ctx).Order("species_id").Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("list biotype counts: %w", err)
	}
	return counts, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
