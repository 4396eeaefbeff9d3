package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateOutcomeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateOutcomeRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateOutcomeRequest{DisplayID: "lobby_1", Label: "Free Item", ProbabilityWeight: 10},
		},
		{
			name:    "missing display id",
			req:     CreateOutcomeRequest{Label: "Free Item", ProbabilityWeight: 10},
			wantErr: true,
		},
		{
			name:    "missing label",
			req:     CreateOutcomeRequest{DisplayID: "lobby_1", ProbabilityWeight: 10},
			wantErr: true,
		},
		{
			name:    "negative weight",
			req:     CreateOutcomeRequest{DisplayID: "lobby_1", Label: "Free Item", ProbabilityWeight: -1},
			wantErr: true,
		},
		{
			name: "zero weight allowed",
			req:  CreateOutcomeRequest{DisplayID: "lobby_1", Label: "Paused Prize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateOutcomeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateOutcomeRequest
		wantErr bool
	}{
		{
			name: "empty update",
			req:  UpdateOutcomeRequest{},
		},
		{
			name: "weight only",
			req:  UpdateOutcomeRequest{ProbabilityWeight: intPtr(25)},
		},
		{
			name: "zero weight allowed",
			req:  UpdateOutcomeRequest{ProbabilityWeight: intPtr(0)},
		},
		{
			name:    "negative weight",
			req:     UpdateOutcomeRequest{ProbabilityWeight: intPtr(-5)},
			wantErr: true,
		},
		{
			name: "label only",
			req:  UpdateOutcomeRequest{Label: strPtr("Grand Prize")},
		},
		{
			name:    "blank label",
			req:     UpdateOutcomeRequest{Label: strPtr("")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBulkUpdateWeightsRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BulkUpdateWeightsRequest
		wantErr bool
	}{
		{
			name: "valid batch",
			req: BulkUpdateWeightsRequest{Outcomes: []OutcomeWeightRequest{
				{ID: "o1", ProbabilityWeight: intPtr(30)},
				{ID: "o2", ProbabilityWeight: intPtr(0)},
			}},
		},
		{
			name:    "empty batch",
			req:     BulkUpdateWeightsRequest{},
			wantErr: true,
		},
		{
			name: "missing id",
			req: BulkUpdateWeightsRequest{Outcomes: []OutcomeWeightRequest{
				{ProbabilityWeight: intPtr(30)},
			}},
			wantErr: true,
		},
		{
			name: "missing weight",
			req: BulkUpdateWeightsRequest{Outcomes: []OutcomeWeightRequest{
				{ID: "o1"},
			}},
			wantErr: true,
		},
		{
			name: "negative weight",
			req: BulkUpdateWeightsRequest{Outcomes: []OutcomeWeightRequest{
				{ID: "o1", ProbabilityWeight: intPtr(-1)},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
