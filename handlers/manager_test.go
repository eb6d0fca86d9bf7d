package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	response string
	err      error
	prompts  []string
	backends []string
}

func (f *fakeGateway) Submit(_ context.Context, backendID, prompt string) (string, error) {
	f.backends = append(f.backends, backendID)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestManagerQuestionHandler(t *testing.T) {
	gateway := &fakeGateway{response: "תשובה ישירה.\nפרט נוסף."}
	registry := Registry(&fakeMetrics{}, func(o *Options) {
		o.ManagerGateway = gateway
		o.ManagerBackend = "manager-gemini"
	})

	got, err := registry[intent.CmdManagerQuestion](context.Background(),
		request(intent.CmdManagerQuestion, map[string]any{
			intent.ParamQuestion: "מי מאשר חריגות משמרת?",
		}))
	require.NoError(t, err)
	assert.Equal(t, "תשובה ישירה.\nפרט נוסף.", got)
	require.Len(t, gateway.prompts, 1)
	assert.Contains(t, gateway.prompts[0], "מי מאשר חריגות משמרת?")
	assert.Contains(t, gateway.prompts[0], "מקסימום 4 שורות")
	assert.Equal(t, []string{"manager-gemini"}, gateway.backends)
}

func TestManagerQuestionHandler_CapsToFourLines(t *testing.T) {
	gateway := &fakeGateway{response: "אחת\n\nשתיים\nשלוש\nארבע\nחמש\nשש"}
	registry := Registry(&fakeMetrics{}, func(o *Options) {
		o.ManagerGateway = gateway
		o.ManagerBackend = "manager-gemini"
	})

	got, err := registry[intent.CmdManagerQuestion](context.Background(),
		request(intent.CmdManagerQuestion, map[string]any{intent.ParamQuestion: "שאלה"}))
	require.NoError(t, err)
	assert.Equal(t, "אחת\nשתיים\nשלוש\nארבע", got)
	assert.Len(t, strings.Split(got, "\n"), 4)
}

func TestManagerQuestionHandler_BackendErrorIsApology(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("quota exceeded")}
	registry := Registry(&fakeMetrics{}, func(o *Options) {
		o.ManagerGateway = gateway
		o.ManagerBackend = "manager-gemini"
	})

	got, err := registry[intent.CmdManagerQuestion](context.Background(),
		request(intent.CmdManagerQuestion, map[string]any{intent.ParamQuestion: "שאלה"}))
	require.NoError(t, err)
	assert.Contains(t, got, "אירעה שגיאה")
}

func TestManagerQuestionHandler_EmptyResponse(t *testing.T) {
	gateway := &fakeGateway{response: "  \n "}
	registry := Registry(&fakeMetrics{}, func(o *Options) {
		o.ManagerGateway = gateway
		o.ManagerBackend = "manager-gemini"
	})

	got, err := registry[intent.CmdManagerQuestion](context.Background(),
		request(intent.CmdManagerQuestion, map[string]any{intent.ParamQuestion: "שאלה"}))
	require.NoError(t, err)
	assert.Contains(t, got, "לא קיבלתי תשובה")
}

func TestManagerQuestionHandler_NotConfigured(t *testing.T) {
	registry := Registry(&fakeMetrics{})

	got, err := registry[intent.CmdManagerQuestion](context.Background(),
		request(intent.CmdManagerQuestion, map[string]any{intent.ParamQuestion: "שאלה"}))
	require.NoError(t, err)
	assert.Equal(t, respond.Fallback(), got)
}

func TestCapLines(t *testing.T) {
	assert.Equal(t, "a\nb", capLines("a\n\n b \n", 4))
	assert.Equal(t, "", capLines("   ", 4))
}
