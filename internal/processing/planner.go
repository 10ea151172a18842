package processing

import (
	"fmt"
	"strings"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/models"
)

// openQueryTemplates are phrased so that review-style threads rank first.
var openQueryTemplates = []string{
	`"%s" review`,
	`"%s" thoughts`,
	`"%s" vs`,
	`%s`,
}

type Planner struct {
	categories config.Categories
}

func NewPlanner(categories config.Categories) *Planner {
	return &Planner{categories: categories}
}

// Plan turns a product name and optional category into ordered search
// queries. No I/O happens here, so input errors surface before any request.
func (p *Planner) Plan(productName, category string) (models.PlanResult, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return models.PlanResult{}, faults.NewInvalidInput("product_name is required")
	}

	category = strings.TrimSpace(category)
	if category == "" {
		queries := make([]models.SearchQuery, 0, len(openQueryTemplates))
		for _, tmpl := range openQueryTemplates {
			queries = append(queries, models.SearchQuery{
				Text:  fmt.Sprintf(tmpl, productName),
				Scope: models.ScopeAll,
			})
		}
		return models.PlanResult{Mode: models.ModeOpen, Queries: queries}, nil
	}

	subreddits, ok := p.categories.Subreddits(category)
	if !ok {
		return models.PlanResult{}, faults.NewInvalidInput("Invalid category: %s", category)
	}

	queries := make([]models.SearchQuery, 0, len(subreddits))
	for _, sub := range subreddits {
		queries = append(queries, models.SearchQuery{
			Text:  productName,
			Scope: models.NewScope(sub),
		})
	}
	return models.PlanResult{Mode: models.ModeCategory, Queries: queries}, nil
}

// Categories lists the category names the planner accepts.
func (p *Planner) Categories() []string {
	return p.categories.Names()
}
