package product

import (
	"context"
	"errors"
	"io"
	"log"

	"nixtia-store/internal/domain"
	productrepo "nixtia-store/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the products shoppers can add to a cart.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Printf("product service: list error=%v", err)
		return nil, err
	}
	return products, nil
}

// Get returns an active product. Inactive products read as not found.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("product service: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
