// Package llm 生成后端实现：离线mock和带JSON修复的真实后端
package llm

import (
	"context"
	"strings"
)

// MockGenerator 启发式mock，只看系统指令里的关键字决定返回哪种结构。
// 不会报错，也不访问网络。
type MockGenerator struct{}

// NewMockGenerator 创建mock后端
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// IsGoalInstruction 系统指令是否要求目标模块的输出
func IsGoalInstruction(system string) bool {
	return strings.Contains(system, "goal_confidence") ||
		strings.Contains(system, "goal_alignment") ||
		strings.Contains(system, "goal,")
}

// GenerateJSON 返回固定的、符合结构的字面量
func (m *MockGenerator) GenerateJSON(_ context.Context, system string, _ string) (map[string]any, error) {
	if IsGoalInstruction(system) {
		out := map[string]any{
			"goal":        "Clarify the objective and move the conversation to a concrete next step",
			"topic_drift": 0.18,
			"missing_info": []any{
				"Who is the counterpart and what is the relationship?",
				"What is the exact outcome you want from this conversation?",
			},
			"next_move": "Confirm the goal in one sentence, then ask a closed-ended next-step question " +
				"(e.g., 'If we agree the goal is X, can we lock Y today and I'll deliver Z by Friday?').",
			"summary_so_far": []any{
				"The context is incomplete. We should confirm the goal and the counterpart's needs first.",
			},
		}
		if strings.Contains(system, "goal_alignment") {
			out["goal_alignment"] = 0.55
		} else {
			out["goal_confidence"] = 0.62
		}
		return out, nil
	}

	return map[string]any{
		"detected_emotion": "neutral",
		"power_dynamic":    "equal",
		"risk_flags": []any{
			"Your draft may be too vague and lacks a clear next step.",
		},
		"reply_options": []any{
			map[string]any{
				"tag": "Clearer",
				"text": "I get your point. To align quickly, is our goal here X? " +
					"If yes, I suggest we confirm Y next so we can move forward.",
				"why": "Align on the objective first, then propose a concrete step.",
			},
			map[string]any{
				"tag": "Warmer",
				"text": "Thanks for explaining. Just to make sure I'm following, are you mainly concerned about X? " +
					"If so, we can start with Y and take it step by step.",
				"why": "De-escalates pressure while still progressing.",
			},
			map[string]any{
				"tag":  "More assertive",
				"text": "My read is X. To keep momentum, let's lock Y today. Does that work for you?",
				"why":  "Provides a frame and pushes toward a decision.",
			},
		},
	}, nil
}
