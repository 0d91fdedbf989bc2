package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"expense-ledger/internal/categorizer"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/repository"
)

const (
	// recentWindow bounds the "recent totals" aggregate; an expense dated
	// exactly 30 days ago is still inside the window.
	recentWindow = 30 * 24 * time.Hour
	// monthlyGrowth is the fixed 2% growth assumption behind the prediction.
	monthlyGrowth = 1.02
	// suggestionShare is the fraction of the top category's total proposed
	// as savings.
	suggestionShare = 0.10
)

// InsightsService computes read-only aggregates over a user's full expense
// history. Every call recomputes from scratch; histories are small enough
// that caching would buy nothing.
type InsightsService interface {
	Pie(ctx context.Context, userID string) (map[string]float64, error)
	Insights(ctx context.Context, userID string) (*domain.Insights, error)
}

type insightsService struct {
	expenses repository.ExpenseRepository
}

func NewInsightsService(expenses repository.ExpenseRepository) InsightsService {
	return &insightsService{expenses: expenses}
}

// Pie sums all-time spending by category for the breakdown chart.
func (s *insightsService) Pie(ctx context.Context, userID string) (map[string]float64, error) {
	items, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, item := range items {
		totals[item.Category] += item.Amount
	}
	return totals, nil
}

func (s *insightsService) Insights(ctx context.Context, userID string) (*domain.Insights, error) {
	items, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-recentWindow)
	recentTotals := make(map[string]float64)
	for _, item := range items {
		if !item.Date.Before(cutoff) {
			recentTotals[item.Category] += item.Amount
		}
	}

	// All-time totals, tracking first-encountered order so the top-category
	// tie break is deterministic.
	allTime := make(map[string]float64)
	var order []string
	for _, item := range items {
		if _, seen := allTime[item.Category]; !seen {
			order = append(order, item.Category)
		}
		allTime[item.Category] += item.Amount
	}

	var topCategory string
	var topTotal float64
	for _, category := range order {
		if allTime[category] > topTotal {
			topCategory = category
			topTotal = allTime[category]
		}
	}

	suggestions := make([]string, 0, 1)
	if topCategory != "" && topCategory != categorizer.CategoryMisc {
		savings := math.Round(topTotal * suggestionShare)
		suggestions = append(suggestions, fmt.Sprintf(
			"Try reducing %s spending by 10%% to save %.0f", topCategory, savings))
	}

	// Partition by calendar year-month; months without expenses are absent
	// from the partition, not zero-valued, so a sparse history does not
	// depress the average.
	months := make(map[string]float64)
	for _, item := range items {
		key := fmt.Sprintf("%d-%d", item.Date.Year(), int(item.Date.Month()))
		months[key] += item.Amount
	}

	var avgMonthly float64
	if len(months) > 0 {
		var sum float64
		for _, total := range months {
			sum += total
		}
		avgMonthly = sum / float64(len(months))
	}

	return &domain.Insights{
		Totals:        recentTotals,
		Suggestions:   suggestions,
		NextMonthPred: math.Round(avgMonthly * monthlyGrowth),
		AvgMonthly:    avgMonthly,
	}, nil
}
