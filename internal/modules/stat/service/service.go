package service

import (
	"context"

	categoryService "anadara.com/exportmarket/internal/modules/category/service"
	productService "anadara.com/exportmarket/internal/modules/product/service"
	"anadara.com/exportmarket/internal/modules/user/repository"
)

type Stats struct {
	Users      int64 `json:"users"`
	Exporters  int64 `json:"exporters"`
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
}

type StatService interface {
	Overview(ctx context.Context) (*Stats, error)
}

type statService struct {
	users      repository.UserRepository
	products   productService.ProductService
	categories categoryService.CategoryService
}

func NewStatService(users repository.UserRepository, products productService.ProductService, categories categoryService.CategoryService) StatService {
	return &statService{users: users, products: products, categories: categories}
}

func (s *statService) Overview(ctx context.Context) (*Stats, error) {
	userCount, err := s.users.Count(ctx, "")
	if err != nil {
		return nil, err
	}

	exporterCount, err := s.users.Count(ctx, "exporter")
	if err != nil {
		return nil, err
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	categoryCount, err := s.categories.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:      userCount,
		Exporters:  exporterCount,
		Products:   productCount,
		Categories: categoryCount,
	}, nil
}
