package service

import (
	"context"

	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/store"
)

// DashboardStats 汇总后台首页展示的数量
type DashboardStats struct {
	Products    int `json:"products"`
	Services    int `json:"services"`
	Companies   int `json:"companies"`
	Submissions int `json:"submissions"`
}

// DashboardService computes the admin overview counts.
type DashboardService struct {
	store   store.Store
	content *ContentService
}

func NewDashboardService(st store.Store, contents *ContentService) *DashboardService {
	return &DashboardService{store: st, content: contents}
}

// Stats counts what the dashboard shows. Individual failures leave that count at zero.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	products, err := s.store.List(ctx, content.ProductsCollection)
	keep(err)
	stats.Products = len(products)

	submissions, err := s.store.List(ctx, content.ContactsCollection)
	keep(err)
	stats.Submissions = len(submissions)

	services, err := s.content.Fetch(ctx, content.SectionServices)
	keep(err)
	if categories, ok := services["categories"].(map[string]any); ok {
		for _, raw := range categories {
			category, _ := raw.(map[string]any)
			list, _ := category["services"].([]any)
			stats.Services += len(list)
		}
	}

	companies, err := s.content.Fetch(ctx, content.SectionCompanies)
	keep(err)
	if list, ok := companies["companies"].([]any); ok {
		stats.Companies = len(list)
	}

	return stats, firstErr
}
