package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
)

// stockStage держит заблокированные товары в пределах одной транзакции.
// Несколько позиций одного товара видят списания друг друга до записи в БД.
type stockStage struct {
	repo     ProductRepository
	products map[int64]*domain.Product
	absent   map[int64]struct{}
	touched  []int64
}

func newStockStage(repo ProductRepository) *stockStage {
	return &stockStage{
		repo:     repo,
		products: make(map[int64]*domain.Product),
		absent:   make(map[int64]struct{}),
	}
}

// get возвращает товар из стейджа или блокирует его строку в БД.
// Отсутствующий товар даёт e.ErrProductNotFound.
func (s *stockStage) get(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	if _, ok := s.absent[id]; ok {
		return nil, e.ErrProductNotFound
	}

	p, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			s.absent[id] = struct{}{}
			return nil, e.ErrProductNotFound
		}
		return nil, err
	}

	s.products[id] = p
	return p, nil
}

// deduct списывает quantity, если остатка хватает, иначе возвращает InsufficientStockError.
func (s *stockStage) deduct(p *domain.Product, quantity int) error {
	if !p.CanFulfil(quantity) {
		return e.NewInsufficientStockError(p.ID, quantity, p.StockQuantity)
	}
	p.Deduct(quantity)
	s.touch(p.ID)
	return nil
}

func (s *stockStage) restock(p *domain.Product, quantity int) {
	p.Restock(quantity)
	s.touch(p.ID)
}

func (s *stockStage) touch(id int64) {
	for _, t := range s.touched {
		if t == id {
			return
		}
	}
	s.touched = append(s.touched, id)
}

// flush записывает изменённые остатки.
func (s *stockStage) flush(ctx context.Context) error {
	for _, id := range s.touched {
		if err := s.repo.UpdateStock(ctx, id, s.products[id].StockQuantity); err != nil {
			return err
		}
	}
	return nil
}
