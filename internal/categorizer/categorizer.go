// Package categorizer assigns a spending category to an expense based on its
// description, falling back to amount heuristics.
package categorizer

import "strings"

// Category labels. CategoryMisc is the catch-all: it carries no keywords and
// is reachable only through the amount fallback or as the ultimate default.
const (
	CategoryFood          = "Food"
	CategoryRent          = "Rent"
	CategoryTransport     = "Transport"
	CategoryGroceries     = "Groceries"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills"
	CategoryMisc          = "Misc"
)

type rule struct {
	category string
	keywords []string
}

// rules is scanned in order; when keywords from several categories appear in
// one description, the earlier entry wins. Reordering changes behavior.
var rules = []rule{
	{CategoryFood, []string{"restaurant", "zomato", "swiggy", "uber eats", "cafe", "coffee", "dine"}},
	{CategoryRent, []string{"rent", "apartment", "landlord"}},
	{CategoryTransport, []string{"uber", "ola", "taxi", "bus", "metro", "petrol", "fuel"}},
	{CategoryGroceries, []string{"grocery", "supermarket", "flipkart", "amazon", "bigbasket"}},
	{CategoryEntertainment, []string{"netflix", "spotify", "movie", "cinema", "game"}},
	{CategoryBills, []string{"electricity", "water", "internet", "phone", "bill"}},
}

// Amount fallback thresholds, strict inequalities: an amount of exactly 20000
// is Bills, not Rent.
const (
	rentAmountThreshold  = 20000
	billsAmountThreshold = 5000
)

// Categorize maps a description and amount to a category label. It is pure:
// no I/O, no state, deterministic for a given input.
func Categorize(description string, amount float64) string {
	desc := strings.ToLower(description)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(desc, keyword) {
				return r.category
			}
		}
	}

	if amount > rentAmountThreshold {
		return CategoryRent
	}
	if amount > billsAmountThreshold {
		return CategoryBills
	}
	return CategoryMisc
}
