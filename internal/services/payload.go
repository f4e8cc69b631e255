package services

import (
	"math"
	"strconv"
	"strings"

	"koi_fox_mini/internal/models"
)

// 载荷各段标题，顺序和文字都会影响模型输出，不要随意调整
const (
	sectionGoalSpec     = "=== EXPLICIT GOAL SPEC (USER-PROVIDED) ==="
	sectionConversation = "=== Conversation Context ==="
	sectionDraft        = "=== User Draft ==="
	sectionKnobs        = "=== Preference Knobs ==="
	payloadTrailer      = "Return STRICT JSON only."
	emptyListItem       = "- (none)"
)

// BuildPayload 构建Koi和Fox共用的用户载荷（v1）
func BuildPayload(req models.AnalyzeRequest) string {
	var b strings.Builder
	writeBody(&b, req)
	return b.String()
}

// BuildPayloadV2 构建带显式目标说明的载荷，目标段落在对话之前
func BuildPayloadV2(req models.AnalyzeRequestV2) string {
	gs := req.GoalSpec

	var b strings.Builder
	b.WriteString(sectionGoalSpec + "\n")
	b.WriteString("Goal: " + gs.Goal + "\n")
	b.WriteString("Goal Type: " + string(gs.GoalType) + "\n")
	b.WriteString("Relationship: " + gs.Relationship + "\n")
	b.WriteString("Constraints:\n")
	b.WriteString(bulletList(gs.Constraints) + "\n")
	b.WriteString("Success Criteria:\n")
	b.WriteString(bulletList(gs.SuccessCriteria) + "\n\n")
	writeBody(&b, req.AnalyzeRequest)
	return b.String()
}

func writeBody(b *strings.Builder, req models.AnalyzeRequest) {
	b.WriteString(sectionConversation + "\n")
	b.WriteString(req.Conversation + "\n\n")
	b.WriteString(sectionDraft + "\n")
	b.WriteString(req.UserDraft + "\n\n")
	b.WriteString(sectionKnobs + "\n")
	b.WriteString("aggressiveness=" + formatKnob(req.Aggressiveness) +
		", interruptiveness=" + formatKnob(req.Interruptiveness) +
		", structure_strength=" + formatKnob(req.StructureStrength) + "\n\n")
	b.WriteString(payloadTrailer)
}

// bulletList 空列表输出占位符，避免和"未提供"混淆
func bulletList(items []string) string {
	if len(items) == 0 {
		return emptyListItem
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// formatKnob 最短表示，整数补".0"，如 1 -> "1.0"；
// 绝对值小于1e-4或不小于1e16时用指数形式，如 0.00001 -> "1e-05"
func formatKnob(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
