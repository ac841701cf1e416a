package catalog

import (
	"context"
	"errors"
	"fmt"

	"batchworks-backend/internal/costing"
	"batchworks-backend/internal/database"
	"batchworks-backend/internal/models"

	"gorm.io/gorm"
)

// Store adapts the product/formula tables to the costing engine's lookup
// contracts. The engine itself never sees gorm; everything it reads goes
// through here.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Engine builds a costing engine over the shared database connection. Each
// handler builds its own; the engine carries no state between calls.
func Engine() *costing.Engine {
	s := NewStore(database.DB)
	return costing.NewEngine(s, s)
}

func (s *Store) LookupProduct(ctx context.Context, id uint) (*costing.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", costing.ErrProductNotFound, id)
		}
		return nil, err
	}
	return toCostingProduct(&p), nil
}

func (s *Store) LookupFormula(ctx context.Context, id uint) (*costing.Formula, error) {
	var f models.Formula
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("formula_lines.sequence ASC")
		}).
		First(&f, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", costing.ErrFormulaNotFound, id)
		}
		return nil, err
	}
	return toCostingFormula(&f), nil
}

func (s *Store) LookupFormulas(ctx context.Context, outputProductID uint, activeOnly bool) ([]costing.Formula, error) {
	q := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("formula_lines.sequence ASC")
		}).
		Where("output_product_id = ?", outputProductID).
		Order("version ASC, id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var rows []models.Formula
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]costing.Formula, 0, len(rows))
	for i := range rows {
		out = append(out, *toCostingFormula(&rows[i]))
	}
	return out, nil
}

func toCostingProduct(p *models.Product) *costing.Product {
	return &costing.Product{
		ID:                 p.ID,
		SKU:                p.SKU,
		Name:               p.Name,
		Density:            p.Density,
		UsageUnit:          p.UsageUnit,
		UsageCostExTax:     p.UsageCostExTax,
		PurchaseCostExTax:  p.PurchaseCostExTax,
		UsageCostIncTax:    p.UsageCostIncTax,
		PurchaseCostIncTax: p.PurchaseCostIncTax,
		IsAssembly:         p.IsAssembly,
		BaseUnit:           p.BaseUnit,
		Active:             p.Active,
	}
}

func toCostingFormula(f *models.Formula) *costing.Formula {
	out := &costing.Formula{
		ID:              f.ID,
		Code:            f.Code,
		Name:            f.Name,
		Version:         f.Version,
		OutputProductID: f.OutputProductID,
		YieldFactor:     f.YieldFactor,
		Active:          f.Active,
		Lines:           make([]costing.FormulaLine, 0, len(f.Lines)),
	}
	for _, l := range f.Lines {
		out.Lines = append(out.Lines, costing.FormulaLine{
			Sequence:            l.Sequence,
			IngredientProductID: l.IngredientProductID,
			QuantityKg:          l.QuantityKg,
			Unit:                l.Unit,
			Note:                l.Note,
		})
	}
	return out
}
