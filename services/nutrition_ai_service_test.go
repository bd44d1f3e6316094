package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/config"
	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validPlanContent = `{"bmr":1724,"tdee":2672,"calorie_target":2672,"protein_g":130,"fat_g":70,"carbs_g":390,"fiber_g":37,"water_l":2.6}`

func chatReply(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func newTestAIService(t *testing.T, handler http.HandlerFunc) *NutritionAIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewNutritionAIService(
		config.AIConfig{APIKey: "test-key", BaseURL: srv.URL},
		zap.NewNop(),
		WithHTTPClient(srv.Client()),
	)
	svc.backoff = time.Millisecond
	return svc
}

func planInputFixture() PlanInput {
	return PlanInput{Sex: "male", Age: 25, HeightCm: 175, WeightKg: 75, ActivityLevel: "moderate"}
}

func TestAIGeneratePlanSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(chatReply(validPlanContent)))
	})

	metrics, audit, err := svc.GeneratePlan(context.Background(), planInputFixture())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
	assert.Len(t, gotReq.Messages, 2)

	assert.Equal(t, 1724.0, metrics.BMR)
	assert.Equal(t, 130.0, metrics.ProteinG)
	assert.Equal(t, 2.6, metrics.WaterL)
	assert.Equal(t, validPlanContent, audit.RawJSON)
	assert.NotEmpty(t, audit.PromptID)
}

func TestAIGeneratePlanStripsCodeFences(t *testing.T) {
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n" + validPlanContent + "\n```")))
	})

	metrics, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
	require.NoError(t, err)
	assert.Equal(t, 2672.0, metrics.CalorieTarget)
}

func TestAIGeneratePlanRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(chatReply(validPlanContent)))
	})

	metrics, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
	require.NoError(t, err)
	assert.Equal(t, 1724.0, metrics.BMR)
	assert.EqualValues(t, 3, calls.Load())
}

func TestAIGeneratePlanExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
	assert.ErrorIs(t, err, ErrAIServiceUnavailable)
	assert.EqualValues(t, 3, calls.Load()) // initial attempt plus two retries
}

func TestAIGeneratePlanInvalidContentNotRetried(t *testing.T) {
	var calls atomic.Int32
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(chatReply("the targets look great!")))
	})

	_, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
	assert.ErrorIs(t, err, ErrInvalidAIOutput)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAIGeneratePlanContractViolations(t *testing.T) {
	cases := map[string]string{
		"missing field":     `{"bmr":1724,"tdee":2672,"calorie_target":2672,"protein_g":130,"fat_g":70,"carbs_g":390,"fiber_g":37}`,
		"non-numeric field": `{"bmr":"1724","tdee":2672,"calorie_target":2672,"protein_g":130,"fat_g":70,"carbs_g":390,"fiber_g":37,"water_l":2.6}`,
		"not an object":     `[1724,2672]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(chatReply(content)))
			})
			_, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
			assert.ErrorIs(t, err, ErrInvalidAIOutput)
		})
	}
}

func TestAIGeneratePlanEmptyChoices(t *testing.T) {
	svc := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, _, err := svc.GeneratePlan(context.Background(), planInputFixture())
	assert.ErrorIs(t, err, ErrInvalidAIOutput)
}

func TestGenerateAIPersistsAudit(t *testing.T) {
	db := testDB(t)
	ai := newTestAIService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(validPlanContent)))
	})
	svc := NewGoalPlanService(db, ai, zap.NewNop())

	plan, err := svc.Generate(context.Background(), 7, planInputFixture(), models.PlanSourceAI)
	require.NoError(t, err)

	assert.Equal(t, models.PlanSourceAI, plan.Source)
	assert.Equal(t, 1, plan.Version)
	assert.NotEmpty(t, plan.AIModel)
	assert.NotEmpty(t, plan.PromptID)
	assert.Equal(t, validPlanContent, plan.RawJSON)
	assert.Equal(t, 2672.0, plan.CalorieTarget)
}
