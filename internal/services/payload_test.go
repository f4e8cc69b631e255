package services

import (
	"math"
	"strings"
	"testing"

	"koi_fox_mini/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() models.AnalyzeRequest {
	req := models.NewAnalyzeRequest()
	req.Conversation = "Boss asked for status"
	req.UserDraft = "I'll get to it"
	req.KoiPersonaID = "koi_entrepreneur_driver"
	req.FoxPersonaID = "fox_workplace_leader"
	return req
}

func TestBuildPayload_Exact(t *testing.T) {
	req := sampleRequest()
	req.Aggressiveness = 1

	want := "=== Conversation Context ===\n" +
		"Boss asked for status\n\n" +
		"=== User Draft ===\n" +
		"I'll get to it\n\n" +
		"=== Preference Knobs ===\n" +
		"aggressiveness=1.0, interruptiveness=0.3, structure_strength=0.6\n\n" +
		"Return STRICT JSON only."
	assert.Equal(t, want, BuildPayload(req))
}

func TestBuildPayload_Order(t *testing.T) {
	tests := []struct {
		name         string
		conversation string
		draft        string
	}{
		{name: "普通文本", conversation: "A: hi\nB: hello", draft: "see you"},
		{name: "草稿和对话相同", conversation: "same", draft: "same"},
		{name: "包含段落标题", conversation: "=== User Draft ===", draft: "=== Conversation Context ==="},
		{name: "中文", conversation: "老板: 进度如何?", draft: "马上"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			req.Conversation = tt.conversation
			req.UserDraft = tt.draft

			for _, payload := range []string{BuildPayload(req), BuildPayloadV2(models.AnalyzeRequestV2{AnalyzeRequest: req})} {
				convBlock := sectionConversation + "\n" + tt.conversation + "\n\n"
				draftBlock := sectionDraft + "\n" + tt.draft + "\n\n"
				ci := strings.Index(payload, convBlock)
				di := strings.Index(payload, draftBlock)
				require.GreaterOrEqual(t, ci, 0)
				require.GreaterOrEqual(t, di, 0)
				assert.Less(t, ci, di)
			}
		})
	}
}

func TestBuildPayload_Deterministic(t *testing.T) {
	req := sampleRequest()
	assert.Equal(t, BuildPayload(req), BuildPayload(req))
}

func TestBuildPayloadV2(t *testing.T) {
	req := models.AnalyzeRequestV2{
		AnalyzeRequest: sampleRequest(),
		GoalSpec: models.GoalSpec{
			Goal:            "Agree on a delivery date",
			GoalType:        models.GoalTypeBusiness,
			Relationship:    "boss",
			Constraints:     []string{"stay polite", "no overtime"},
			SuccessCriteria: nil,
		},
	}

	payload := BuildPayloadV2(req)

	wantHead := "=== EXPLICIT GOAL SPEC (USER-PROVIDED) ===\n" +
		"Goal: Agree on a delivery date\n" +
		"Goal Type: business\n" +
		"Relationship: boss\n" +
		"Constraints:\n" +
		"- stay polite\n" +
		"- no overtime\n" +
		"Success Criteria:\n" +
		"- (none)\n\n"
	assert.True(t, strings.HasPrefix(payload, wantHead), payload)
	assert.Equal(t, wantHead+BuildPayload(req.AnalyzeRequest), payload)
}

func TestBuildPayloadV2_EmptyConstraints(t *testing.T) {
	req := models.AnalyzeRequestV2{AnalyzeRequest: sampleRequest(), GoalSpec: models.GoalSpec{Goal: "g", Constraints: []string{}}}

	payload := BuildPayloadV2(req)
	assert.Contains(t, payload, "Constraints:\n- (none)\nSuccess Criteria:\n- (none)\n")
	assert.NotContains(t, payload, "Constraints:\n\n")
}

func TestFormatKnob(t *testing.T) {
	assert.Equal(t, "0.0", formatKnob(0))
	assert.Equal(t, "1.0", formatKnob(1))
	assert.Equal(t, "0.25", formatKnob(0.25))
	assert.Equal(t, "NaN", formatKnob(math.NaN()))

	// 指数形式的边界
	assert.Equal(t, "0.0001", formatKnob(0.0001))
	assert.Equal(t, "1e-05", formatKnob(0.00001))
	assert.Equal(t, "9.9e-05", formatKnob(0.000099))
	assert.Equal(t, "1.5e-07", formatKnob(1.5e-7))
	assert.Equal(t, "1e+16", formatKnob(1e16))
}
