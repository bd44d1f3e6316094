package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/SzucsJuan/meals-fit-barreto-szucs-sub001/config"

	"go.uber.org/zap"
)

// The timeout and retry budget are part of the endpoint contract, not
// per-call options.
const (
	aiRequestTimeout = 30 * time.Second
	aiMaxRetries     = 2
	aiRetryBackoff   = 2 * time.Second
	aiTemperature    = 0.2

	defaultAIBaseURL = "https://api.openai.com/v1"
	defaultAIModel   = "gpt-4o-mini"
	planPromptID     = "daily-targets-v1"
)

// planFields are the eight metric keys the AI must return, all numeric.
var planFields = []string{"bmr", "tdee", "calorie_target", "protein_g", "fat_g", "carbs_g", "fiber_g", "water_l"}

// NutritionAIService talks to a bearer-authenticated chat-completions
// endpoint and enforces a strict JSON contract on the reply.
type NutritionAIService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	backoff time.Duration
	logger  *zap.Logger
}

type AIOption func(*NutritionAIService)

func WithHTTPClient(c *http.Client) AIOption {
	return func(s *NutritionAIService) {
		if c != nil {
			s.client = c
		}
	}
}

func WithBaseURL(u string) AIOption {
	return func(s *NutritionAIService) {
		if u != "" {
			s.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

func NewNutritionAIService(cfg config.AIConfig, logger *zap.Logger, opts ...AIOption) *NutritionAIService {
	s := &NutritionAIService{
		apiKey:  cfg.APIKey,
		baseURL: defaultAIBaseURL,
		model:   defaultAIModel,
		client:  &http.Client{Timeout: aiRequestTimeout},
		backoff: aiRetryBackoff,
		logger:  logger,
	}
	if cfg.BaseURL != "" {
		s.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Model != "" {
		s.model = cfg.Model
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// PlanAudit is stored alongside an AI-generated plan version.
type PlanAudit struct {
	Model    string
	PromptID string
	RawJSON  string
}

// GeneratePlan asks the endpoint for the eight daily targets. Transport and
// server errors are retried with a fixed backoff; a reply that violates the
// JSON contract is a terminal ErrInvalidAIOutput and is not retried. With no
// credential configured the call fails immediately — this strategy never
// silently falls back to the rule strategy.
func (s *NutritionAIService) GeneratePlan(ctx context.Context, in PlanInput) (PlanMetrics, PlanAudit, error) {
	if s.apiKey == "" {
		return PlanMetrics{}, PlanAudit{}, fmt.Errorf("%w: no API key configured", ErrAIServiceUnavailable)
	}

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: planSystemPrompt},
			{Role: "user", Content: buildPlanPrompt(in)},
		},
		Temperature: aiTemperature,
	}
	req.ResponseFormat.Type = "json_object"
	payload, err := json.Marshal(req)
	if err != nil {
		return PlanMetrics{}, PlanAudit{}, err
	}

	var lastErr error
	for attempt := 0; attempt <= aiMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return PlanMetrics{}, PlanAudit{}, ctx.Err()
			case <-time.After(s.backoff):
			}
		}

		content, err := s.complete(ctx, payload)
		if err != nil {
			if errors.Is(err, ErrInvalidAIOutput) {
				return PlanMetrics{}, PlanAudit{}, err
			}
			lastErr = err
			s.logger.Warn("ai_plan_attempt_failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		metrics, err := parsePlanContent(content)
		if err != nil {
			return PlanMetrics{}, PlanAudit{}, err
		}
		return metrics, PlanAudit{Model: s.model, PromptID: planPromptID, RawJSON: content}, nil
	}
	return PlanMetrics{}, PlanAudit{}, fmt.Errorf("%w: %v", ErrAIServiceUnavailable, lastErr)
}

func (s *NutritionAIService) complete(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call AI endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read AI response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI endpoint error %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("%w: response is not valid JSON", ErrInvalidAIOutput)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidAIOutput)
	}
	return cr.Choices[0].Message.Content, nil
}

// parsePlanContent enforces the schema: a JSON object with all eight metric
// fields present and numeric. Anything else fails the whole generation.
func parsePlanContent(content string) (PlanMetrics, error) {
	cleaned := sanitizeJSON(content)
	if cleaned == "" {
		return PlanMetrics{}, fmt.Errorf("%w: empty content", ErrInvalidAIOutput)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return PlanMetrics{}, fmt.Errorf("%w: content is not a JSON object", ErrInvalidAIOutput)
	}

	values := make(map[string]float64, len(planFields))
	for _, field := range planFields {
		v, ok := raw[field]
		if !ok {
			return PlanMetrics{}, fmt.Errorf("%w: missing field %q", ErrInvalidAIOutput, field)
		}
		f, ok := v.(float64)
		if !ok {
			return PlanMetrics{}, fmt.Errorf("%w: field %q is not numeric", ErrInvalidAIOutput, field)
		}
		values[field] = f
	}

	return PlanMetrics{
		BMR:           values["bmr"],
		TDEE:          values["tdee"],
		CalorieTarget: values["calorie_target"],
		ProteinG:      values["protein_g"],
		FatG:          values["fat_g"],
		CarbsG:        values["carbs_g"],
		FiberG:        values["fiber_g"],
		WaterL:        values["water_l"],
	}, nil
}

// sanitizeJSON strips markdown code fences some models wrap JSON in.
func sanitizeJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

const planSystemPrompt = "You are a sports-nutrition calculation engine. " +
	"Reply with a single JSON object and nothing else: no prose, no markdown."

// buildPlanPrompt encodes the rule strategy textually. The constants are
// interpolated from the same tables ComputeRulePlan uses, so the prompt
// cannot drift from the formula.
func buildPlanPrompt(in PlanInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compute daily nutrition targets for this profile:\n")
	fmt.Fprintf(&b, "- sex: %s\n- age: %d years\n- height: %.1f cm\n- weight: %.1f kg\n", in.Sex, in.Age, in.HeightCm, in.WeightKg)
	fmt.Fprintf(&b, "- activity level: %s\n- mode: %s\n- experience: %s\n\n", in.ActivityLevel, in.Mode, in.Experience)

	b.WriteString("RULES:\n")
	b.WriteString("1. BMR via Mifflin-St Jeor: 10*weight + 6.25*height - 5*age, then +5 for male or -161 for female.\n")

	levels := make([]string, 0, len(activityFactors))
	for level := range activityFactors {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	b.WriteString("2. TDEE = BMR * activity factor: ")
	for i, level := range levels {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%.3f", level, activityFactors[level])
	}
	fmt.Fprintf(&b, "; unknown level uses %.2f.\n", defaultActivityFactor)

	fmt.Fprintf(&b, "3. Calorie target: maintenance = TDEE; gain = TDEE*%.2f; loss = TDEE*%.3f.\n", gainCalorieFactor, lossCalorieFactor)
	fmt.Fprintf(&b, "4. Protein grams = weight * (beginner=%.1f, advanced=%.1f, professional=%.1f per kg).\n",
		proteinPerKg["beginner"], proteinPerKg["advanced"], proteinPerKg["professional"])
	fmt.Fprintf(&b, "5. Fat grams = weight * %.1f.\n", fatPerKg)
	b.WriteString("6. Carb grams = max(0, calorie_target - protein_g*4 - fat_g*9) / 4.\n")
	fmt.Fprintf(&b, "7. Round protein/fat/carbs to the nearest multiple of 5 g; round bmr, tdee and calorie_target to whole numbers; fiber_g = round(calorie_target/1000*%d); water_l = weight*%.3f rounded to 1 decimal.\n\n",
		fiberPer1000Kcal, waterLitersPerKg)

	b.WriteString("Return ONLY a JSON object with exactly these numeric fields: ")
	b.WriteString(strings.Join(planFields, ", "))
	b.WriteString(".")
	return b.String()
}
