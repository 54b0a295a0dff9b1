package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Headquarters owns a set of branches.
type Headquarters struct {
	HeadquartersID int64   `json:"headquartersId"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Address        *string `json:"address"`
	ContactPerson  *string `json:"contactPerson"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
}

// Branch places orders on behalf of its headquarters.
type Branch struct {
	BranchID       int64   `json:"branchId"`
	HeadquartersID int64   `json:"headquartersId"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Address        *string `json:"address"`
	ContactPerson  *string `json:"contactPerson"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
}

const (
	maxScore        = 100
	pointsPerOrder  = 5
	pointsPerBranch = 10
)

// Metrics is the performance summary of a headquarters.
type Metrics struct {
	Branches int64   `json:"branches"`
	Orders   int64   `json:"orders"`
	Average  float64 `json:"average"`
	Score    int64   `json:"score"`
	Display  string  `json:"display"`
}

// ComputeMetrics scores a headquarters from its branch and order counts.
// Average is orders per branch rounded to two places; score is capped at 100.
func ComputeMetrics(branches, orders int64) Metrics {
	average := decimal.Zero
	if branches > 0 {
		average = decimal.NewFromInt(orders).DivRound(decimal.NewFromInt(branches), 2)
	}
	score := orders*pointsPerOrder + branches*pointsPerBranch
	if score > maxScore {
		score = maxScore
	}
	avg, _ := average.Float64()
	return Metrics{
		Branches: branches,
		Orders:   orders,
		Average:  avg,
		Score:    score,
		Display:  fmt.Sprintf("%d/%d (%s orders per branch)", score, maxScore, average.StringFixed(2)),
	}
}

// Label names the performance tier of a score.
func Label(score int64) string {
	switch {
	case score >= 80:
		return "Top Performer"
	case score >= 50:
		return "Established"
	case score >= 20:
		return "Growing"
	default:
		return "New"
	}
}
