package catalog

import (
	"fmt"

	"github.com/temcen/quickrec/pkg/models"
)

// Store is an immutable, ordered snapshot of the product catalog. Iteration order is the
// load order, and Position maps every product id to its index in that order.
type Store struct {
	products []models.Product
	position map[int64]int
}

// NewStore copies products into a new store. Duplicate ids are rejected so the
// id→position map stays one-to-one.
func NewStore(products []models.Product) (*Store, error) {
	s := &Store{
		products: make([]models.Product, len(products)),
		position: make(map[int64]int, len(products)),
	}
	copy(s.products, products)

	for i, p := range s.products {
		if _, dup := s.position[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d at row %d", p.ID, i)
		}
		s.position[p.ID] = i
	}

	return s, nil
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.products)
}

// Products returns a copy of the catalog in iteration order.
func (s *Store) Products() []models.Product {
	if s == nil {
		return nil
	}
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) At(pos int) models.Product {
	return s.products[pos]
}

func (s *Store) Position(id int64) (int, bool) {
	if s == nil {
		return 0, false
	}
	pos, ok := s.position[id]
	return pos, ok
}

func (s *Store) Lookup(id int64) (models.Product, bool) {
	pos, ok := s.Position(id)
	if !ok {
		return models.Product{}, false
	}
	return s.products[pos], true
}

// Texts returns the combined text of every product, aligned with catalog positions.
func (s *Store) Texts() []string {
	texts := make([]string, s.Len())
	for i, p := range s.products {
		texts[i] = p.CombinedText()
	}
	return texts
}
