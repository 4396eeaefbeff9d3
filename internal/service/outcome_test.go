package service

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/repository"
)

type fakeOutcomeStore struct {
	outcomes map[string]domain.Outcome
}

func newFakeOutcomeStore(outcomes ...domain.Outcome) *fakeOutcomeStore {
	store := &fakeOutcomeStore{outcomes: map[string]domain.Outcome{}}
	for _, o := range outcomes {
		store.outcomes[o.ID] = o
	}

	return store
}

func (f *fakeOutcomeStore) Create(_ context.Context, outcome domain.Outcome) (domain.Outcome, error) {
	f.outcomes[outcome.ID] = outcome

	return outcome, nil
}

func (f *fakeOutcomeStore) FindByID(_ context.Context, id string) (domain.Outcome, error) {
	outcome, ok := f.outcomes[id]
	if !ok {
		return domain.Outcome{}, repository.ErrOutcomeNotFound
	}

	return outcome, nil
}

func (f *fakeOutcomeStore) FindByDisplay(_ context.Context, displayID string) ([]domain.Outcome, error) {
	var result []domain.Outcome
	for _, o := range f.outcomes {
		if o.DisplayID == displayID {
			result = append(result, o)
		}
	}
	sortOutcomesByWeight(result)

	return result, nil
}

func (f *fakeOutcomeStore) FindActiveByDisplay(_ context.Context, displayID string) ([]domain.Outcome, error) {
	var result []domain.Outcome
	for _, o := range f.outcomes {
		if o.DisplayID == displayID && o.IsActive {
			result = append(result, o)
		}
	}
	sortOutcomesByWeight(result)

	return result, nil
}

func (f *fakeOutcomeStore) Update(_ context.Context, id string, fields map[string]any) (domain.Outcome, error) {
	outcome, ok := f.outcomes[id]
	if !ok {
		return domain.Outcome{}, repository.ErrOutcomeNotFound
	}

	if v, ok := fields["label"]; ok {
		outcome.Label = v.(string)
	}
	if v, ok := fields["probability_weight"]; ok {
		outcome.ProbabilityWeight = v.(int)
	}
	if v, ok := fields["is_active"]; ok {
		outcome.IsActive = v.(bool)
	}
	if v, ok := fields["is_negative"]; ok {
		outcome.IsNegative = v.(bool)
	}
	f.outcomes[id] = outcome

	return outcome, nil
}

func (f *fakeOutcomeStore) UpdateWeights(_ context.Context, updates []domain.OutcomeWeightUpdate) ([]domain.Outcome, error) {
	// Unknown ids fail the whole batch, like the transactional store.
	for _, u := range updates {
		if _, ok := f.outcomes[u.OutcomeID]; !ok {
			return nil, repository.ErrOutcomeNotFound
		}
	}

	updated := make([]domain.Outcome, 0, len(updates))
	for _, u := range updates {
		outcome := f.outcomes[u.OutcomeID]
		outcome.ProbabilityWeight = u.Weight
		f.outcomes[u.OutcomeID] = outcome
		updated = append(updated, outcome)
	}
	sortOutcomesByWeight(updated)

	return updated, nil
}

func (f *fakeOutcomeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.outcomes[id]; !ok {
		return repository.ErrOutcomeNotFound
	}
	delete(f.outcomes, id)

	return nil
}

func sortOutcomesByWeight(outcomes []domain.Outcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].ProbabilityWeight != outcomes[j].ProbabilityWeight {
			return outcomes[i].ProbabilityWeight > outcomes[j].ProbabilityWeight
		}

		return outcomes[i].ID < outcomes[j].ID
	})
}

type fakeOutcomeDisplays struct {
	displays map[string]domain.DisplayInstance
}

func (f *fakeOutcomeDisplays) Create(_ context.Context, display domain.DisplayInstance) (domain.DisplayInstance, error) {
	f.displays[display.ID] = display

	return display, nil
}

func (f *fakeOutcomeDisplays) FindByID(_ context.Context, id string) (domain.DisplayInstance, error) {
	display, ok := f.displays[id]
	if !ok {
		return domain.DisplayInstance{}, repository.ErrDisplayNotFound
	}

	return display, nil
}

func (f *fakeOutcomeDisplays) FindAll(_ context.Context) ([]domain.DisplayInstance, error) {
	return nil, nil
}

func (f *fakeOutcomeDisplays) Update(_ context.Context, id string, _ map[string]any) (domain.DisplayInstance, error) {
	return f.FindByID(context.Background(), id)
}

func (f *fakeOutcomeDisplays) Delete(_ context.Context, _ string) error {
	return nil
}

func (f *fakeOutcomeDisplays) Stats(_ context.Context, _ string) (domain.DisplayStats, error) {
	return domain.DisplayStats{}, nil
}

func setupOutcomeService(outcomes ...domain.Outcome) *OutcomeService {
	displays := &fakeOutcomeDisplays{
		displays: map[string]domain.DisplayInstance{
			"lobby_1": {ID: "lobby_1", IsActive: true},
		},
	}

	return NewOutcomeService(newFakeOutcomeStore(outcomes...), displays)
}

func lobbyWheel() []domain.Outcome {
	wheel := defaultWheel()
	for i := range wheel {
		wheel[i].DisplayID = "lobby_1"
	}

	return wheel
}

func TestOutcomeService_BulkUpdateWeights(t *testing.T) {
	svc := setupOutcomeService(lobbyWheel()...)

	updated, err := svc.BulkUpdateWeights(context.Background(), []domain.OutcomeWeightUpdate{
		{OutcomeID: "o1", Weight: 50},
		{OutcomeID: "o2", Weight: 0},
	})

	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, "o1", updated[0].ID)
	assert.Equal(t, 50, updated[0].ProbabilityWeight)
	assert.Equal(t, "o2", updated[1].ID)
	assert.Equal(t, 0, updated[1].ProbabilityWeight)
}

func TestOutcomeService_BulkUpdateWeightsRejectsBadInput(t *testing.T) {
	svc := setupOutcomeService(lobbyWheel()...)
	ctx := context.Background()

	_, err := svc.BulkUpdateWeights(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidWeightUpdate)

	_, err = svc.BulkUpdateWeights(ctx, []domain.OutcomeWeightUpdate{{OutcomeID: "", Weight: 10}})
	assert.ErrorIs(t, err, ErrInvalidWeightUpdate)

	_, err = svc.BulkUpdateWeights(ctx, []domain.OutcomeWeightUpdate{{OutcomeID: "o1", Weight: -1}})
	assert.ErrorIs(t, err, ErrInvalidWeightUpdate)
}

func TestOutcomeService_BulkUpdateWeightsUnknownOutcomeFailsBatch(t *testing.T) {
	svc := setupOutcomeService(lobbyWheel()...)

	_, err := svc.BulkUpdateWeights(context.Background(), []domain.OutcomeWeightUpdate{
		{OutcomeID: "o1", Weight: 50},
		{OutcomeID: "missing", Weight: 10},
	})

	assert.ErrorIs(t, err, ErrOutcomeNotFound)

	// The known outcome keeps its original weight.
	outcome, err := svc.outcomes.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 30, outcome.ProbabilityWeight)
}

func TestOutcomeService_WeightStats(t *testing.T) {
	wheel := lobbyWheel()
	wheel = append(wheel, domain.Outcome{
		ID: "o6", DisplayID: "lobby_1", Label: "Retired", ProbabilityWeight: 99, IsActive: false,
	})
	svc := setupOutcomeService(wheel...)

	report, err := svc.WeightStats(context.Background(), "lobby_1")

	require.NoError(t, err)
	assert.Equal(t, 100, report.TotalWeight)
	require.Len(t, report.Outcomes, 5)

	byID := map[string]domain.OutcomeWeightStat{}
	for _, stat := range report.Outcomes {
		byID[stat.ID] = stat
	}
	assert.InDelta(t, 30.0, byID["o1"].Percentage, 0.001)
	assert.InDelta(t, 10.0, byID["o2"].Percentage, 0.001)
	assert.InDelta(t, 40.0, byID["o3"].Percentage, 0.001)
	assert.InDelta(t, 15.0, byID["o4"].Percentage, 0.001)
	assert.InDelta(t, 5.0, byID["o5"].Percentage, 0.001)

	// The heaviest segment comes first.
	assert.Equal(t, "o3", report.Outcomes[0].ID)
}

func TestOutcomeService_WeightStatsEmptyWheel(t *testing.T) {
	svc := setupOutcomeService()

	report, err := svc.WeightStats(context.Background(), "lobby_1")

	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalWeight)
	assert.Empty(t, report.Outcomes)
}

func TestOutcomeService_WeightStatsUnknownDisplay(t *testing.T) {
	svc := setupOutcomeService()

	_, err := svc.WeightStats(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrDisplayNotFound)
}
