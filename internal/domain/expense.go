package domain

import "time"

// Expense is a single recorded spend owned by exactly one user. Category is
// assigned once at creation and never recomputed.
type Expense struct {
	ID          string
	UserID      string
	Amount      float64
	Description string
	Date        time.Time
	Category    string
	CreatedAt   time.Time
}

// Insights aggregates a user's expense history into the dashboard numbers.
type Insights struct {
	// Totals sums the last 30 days of spending by category.
	Totals map[string]float64
	// Suggestions holds at most one savings hint derived from the all-time
	// top category.
	Suggestions []string
	// NextMonthPred is the predicted total for next month, whole units.
	NextMonthPred float64
	// AvgMonthly is the mean total across months that contain expenses.
	AvgMonthly float64
}
