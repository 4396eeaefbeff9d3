package domain

import "time"

// Outcome is a prize option on a display's wheel. Weight 0 means the outcome
// is never selected even while active. Negative outcomes never produce a
// redemption code.
type Outcome struct {
	ID                string    `json:"id"`
	DisplayID         string    `json:"display_id"`
	Label             string    `json:"label"`
	ProbabilityWeight int       `json:"probability_weight"`
	IsActive          bool      `json:"is_active"`
	IsNegative        bool      `json:"is_negative"`
	CreatedAt         time.Time `json:"created_at"`
}

// OutcomeWeightUpdate is one entry of a bulk weight change. The whole batch
// applies atomically or not at all.
type OutcomeWeightUpdate struct {
	OutcomeID string `json:"id"`
	Weight    int    `json:"probability_weight"`
}

// OutcomeWeightStat is one active outcome's share of the wheel.
type OutcomeWeightStat struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Weight     int     `json:"probability_weight"`
	Percentage float64 `json:"percentage"`
}

type WeightStatsReport struct {
	Outcomes    []OutcomeWeightStat `json:"outcomes"`
	TotalWeight int                 `json:"total_weight"`
}
