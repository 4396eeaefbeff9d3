package request

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateOutcomeRequest struct {
	DisplayID         string `json:"display_id"`
	Label             string `json:"label"`
	ProbabilityWeight int    `json:"probability_weight"`
	IsNegative        bool   `json:"is_negative"`
}

func (req *CreateOutcomeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DisplayID, validation.Required),
		validation.Field(&req.Label, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.ProbabilityWeight, validation.Min(0)),
	)
}

type UpdateOutcomeRequest struct {
	Label             *string `json:"label"`
	ProbabilityWeight *int    `json:"probability_weight"`
	IsActive          *bool   `json:"is_active"`
	IsNegative        *bool   `json:"is_negative"`
}

func (req *UpdateOutcomeRequest) Validate() error {
	if req.ProbabilityWeight != nil {
		if err := validation.Validate(*req.ProbabilityWeight, validation.Min(0)); err != nil {
			return err
		}
	}
	if req.Label != nil {
		return validation.Validate(*req.Label, validation.Required, validation.Length(1, 100))
	}

	return nil
}

type OutcomeWeightRequest struct {
	ID                string `json:"id"`
	ProbabilityWeight *int   `json:"probability_weight"`
}

type BulkUpdateWeightsRequest struct {
	Outcomes []OutcomeWeightRequest `json:"outcomes"`
}

func (req *BulkUpdateWeightsRequest) Validate() error {
	if len(req.Outcomes) == 0 {
		return errors.New("outcomes must be a non-empty array")
	}

	for _, o := range req.Outcomes {
		if o.ID == "" {
			return errors.New("each outcome must have an id")
		}
		if o.ProbabilityWeight == nil {
			return fmt.Errorf("outcome %s must have a probability_weight", o.ID)
		}
		if err := validation.Validate(*o.ProbabilityWeight, validation.Min(0)); err != nil {
			return fmt.Errorf("probability_weight for outcome %s: %w", o.ID, err)
		}
	}

	return nil
}
