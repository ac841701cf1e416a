package costing

import (
	"context"
	"fmt"
	"sort"
)

// fakeStore backs the engine in tests: plain maps instead of the database,
// same lookup contracts.
type fakeStore struct {
	products map[uint]Product
	formulas map[uint]Formula
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[uint]Product),
		formulas: make(map[uint]Formula),
	}
}

func (s *fakeStore) addProduct(p Product) {
	s.products[p.ID] = p
}

func (s *fakeStore) addFormula(f Formula) {
	s.formulas[f.ID] = f
}

func (s *fakeStore) LookupProduct(ctx context.Context, id uint) (*Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return &p, nil
}

func (s *fakeStore) LookupFormula(ctx context.Context, id uint) (*Formula, error) {
	f, ok := s.formulas[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrFormulaNotFound, id)
	}
	return &f, nil
}

func (s *fakeStore) LookupFormulas(ctx context.Context, outputProductID uint, activeOnly bool) ([]Formula, error) {
	var out []Formula
	for _, f := range s.formulas {
		if f.OutputProductID != outputProductID {
			continue
		}
		if activeOnly && !f.Active {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func newTestEngine(s *fakeStore) *Engine {
	return NewEngine(s, s)
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
