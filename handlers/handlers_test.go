package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/opscouncil/council"
	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/respond"
	"github.com/hupe1980/opscouncil/router"
	"github.com/hupe1980/opscouncil/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMetrics returns canned counts and records the queried arguments.
type fakeMetrics struct {
	daily      int
	between    int
	vehicles   int
	monthly    map[string]int
	err        error
	lastStart  time.Time
	lastEnd    time.Time
	lastMonths []int
}

func (f *fakeMetrics) DailyContainerCount(_ context.Context, day time.Time) (int, error) {
	f.lastStart = day
	return f.daily, f.err
}

func (f *fakeMetrics) ContainerCountBetween(_ context.Context, start, end time.Time) (int, error) {
	f.lastStart, f.lastEnd = start, end
	return f.between, f.err
}

func (f *fakeMetrics) VehicleCountBetween(_ context.Context, start, end time.Time) (int, error) {
	f.lastStart, f.lastEnd = start, end
	return f.vehicles, f.err
}

func (f *fakeMetrics) MonthlyContainerCount(_ context.Context, month, year int) (int, error) {
	f.lastMonths = append(f.lastMonths, month, year)
	return f.monthly[monthKey(month, year)], f.err
}

func (f *fakeMetrics) MonthlyComparison(ctx context.Context, month1, year1, month2, year2 int) (store.Comparison, error) {
	count1, err := f.MonthlyContainerCount(ctx, month1, year1)
	if err != nil {
		return store.Comparison{}, err
	}
	count2, err := f.MonthlyContainerCount(ctx, month2, year2)
	if err != nil {
		return store.Comparison{}, err
	}
	return store.Comparison{Count1: count1, Count2: count2, Difference: count1 - count2}, nil
}

func monthKey(month, year int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("200601")
}

func request(name string, params map[string]any) router.Request {
	return router.Request{
		ID:      "req-1",
		Text:    "הודעה",
		Command: intent.Command{Name: name, Params: params},
	}
}

func TestDailyContainersHandler(t *testing.T) {
	metrics := &fakeMetrics{daily: 120}
	registry := Registry(metrics)

	day := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	got, err := registry[intent.CmdContainersDaily](context.Background(),
		request(intent.CmdContainersDaily, map[string]any{intent.ParamTargetDate: day}))
	require.NoError(t, err)
	assert.Equal(t, respond.DailyContainers(120, day), got)
	assert.Equal(t, day, metrics.lastStart)
}

func TestDailyContainersHandler_MissingParam(t *testing.T) {
	registry := Registry(&fakeMetrics{})
	_, err := registry[intent.CmdContainersDaily](context.Background(),
		request(intent.CmdContainersDaily, map[string]any{}))
	assert.Error(t, err)
}

func TestContainersBetweenHandler(t *testing.T) {
	metrics := &fakeMetrics{between: 3405}
	registry := Registry(metrics)

	start := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	got, err := registry[intent.CmdContainersBetween](context.Background(),
		request(intent.CmdContainersBetween, map[string]any{
			intent.ParamStartDate: start, intent.ParamEndDate: end,
		}))
	require.NoError(t, err)
	assert.Equal(t, respond.ContainersRange(3405, start, end), got)
}

func TestVehiclesBetweenHandler(t *testing.T) {
	metrics := &fakeMetrics{vehicles: 75}
	registry := Registry(metrics)

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	got, err := registry[intent.CmdVehiclesBetween](context.Background(),
		request(intent.CmdVehiclesBetween, map[string]any{
			intent.ParamStartDate: start, intent.ParamEndDate: end,
		}))
	require.NoError(t, err)
	assert.Equal(t, respond.VehiclesRange(75, start, end), got)
}

func TestContainersMonthlyHandler(t *testing.T) {
	metrics := &fakeMetrics{monthly: map[string]int{"202502": 3405}}
	registry := Registry(metrics)

	got, err := registry[intent.CmdContainersMonthly](context.Background(),
		request(intent.CmdContainersMonthly, map[string]any{
			intent.ParamMonth: 2, intent.ParamYear: 2025,
		}))
	require.NoError(t, err)
	assert.Equal(t, respond.MonthlyContainers(3405, 2, 2025), got)
}

func TestContainersComparisonHandler(t *testing.T) {
	metrics := &fakeMetrics{monthly: map[string]int{"202502": 3405, "202401": 3000}}
	registry := Registry(metrics)

	got, err := registry[intent.CmdContainersComparison](context.Background(),
		request(intent.CmdContainersComparison, map[string]any{
			intent.ParamMonth1: 2, intent.ParamYear1: 2025,
			intent.ParamMonth2: 1, intent.ParamYear2: 2024,
		}))
	require.NoError(t, err)
	assert.Contains(t, got, "02/2025: 3405 מכולות")
	assert.Contains(t, got, "01/2024: 3000 מכולות")
	assert.Contains(t, got, "עלייה של 405 מכולות.")
}

func TestHandlerPropagatesStoreError(t *testing.T) {
	metrics := &fakeMetrics{err: errors.New("db locked")}
	registry := Registry(metrics)

	_, err := registry[intent.CmdContainersDaily](context.Background(),
		request(intent.CmdContainersDaily, map[string]any{
			intent.ParamTargetDate: time.Now(),
		}))
	assert.ErrorContains(t, err, "db locked")
}

type fakeStatus struct {
	results []respond.PortStatus
	err     error
	lastID  string
}

func (f *fakeStatus) Lookup(_ context.Context, containerID string) ([]respond.PortStatus, error) {
	f.lastID = containerID
	return f.results, f.err
}

func TestContainerStatusHandler(t *testing.T) {
	status := &fakeStatus{results: []respond.PortStatus{
		{PortName: "אשדוד", Summary: "נפרקה"},
	}}
	registry := Registry(&fakeMetrics{}, func(o *Options) { o.Status = status })

	got, err := registry[intent.CmdContainerStatus](context.Background(),
		request(intent.CmdContainerStatus, map[string]any{
			intent.ParamContainerID: "MSCU1234567",
		}))
	require.NoError(t, err)
	assert.Equal(t, "MSCU1234567", status.lastID)
	assert.Contains(t, got, "• אשדוד: נפרקה")
}

func TestContainerStatusHandler_NoClient(t *testing.T) {
	registry := Registry(&fakeMetrics{})

	got, err := registry[intent.CmdContainerStatus](context.Background(),
		request(intent.CmdContainerStatus, map[string]any{
			intent.ParamContainerID: "MSCU1234567",
		}))
	require.NoError(t, err)
	assert.Equal(t, respond.StatusUnavailable(), got)
}

type fakeConsensus struct {
	answer    council.FinalAnswer
	questions []string
}

func (f *fakeConsensus) Answer(_ context.Context, question string, _ council.ContextBundle, _ []string, _ string) council.FinalAnswer {
	f.questions = append(f.questions, question)
	return f.answer
}

func TestPolicyQuestionHandler(t *testing.T) {
	consensus := &fakeConsensus{answer: council.FinalAnswer{
		Text: "לפי הנוהל נדרש אישור", Provenance: council.ProvenanceSynthesized,
	}}
	registry := Registry(&fakeMetrics{}, func(o *Options) {
		o.Consensus = consensus
		o.Backends = []string{"gpt"}
		o.Aggregator = "gpt"
	})

	req := request(intent.CmdPolicyQuestion, map[string]any{intent.ParamQuestion: "מה הנוהל?"})
	req.Text = "מה הנוהל?"
	got, err := registry[intent.CmdPolicyQuestion](context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "לפי הנוהל נדרש אישור", got)
	assert.Equal(t, []string{"מה הנוהל?"}, consensus.questions)
}

func TestPolicyQuestionHandler_NoConsensus(t *testing.T) {
	registry := Registry(&fakeMetrics{})

	got, err := registry[intent.CmdPolicyQuestion](context.Background(),
		request(intent.CmdPolicyQuestion, map[string]any{intent.ParamQuestion: "מה הנוהל?"}))
	require.NoError(t, err)
	assert.Equal(t, respond.Fallback(), got)
}
