package services

import "koi_fox_mini/internal/models"

// 各模块的输出约定，追加在人设系统指令之后
const (
	koiContractV1 = "STRICT OUTPUT: Return JSON only with EXACT fields:\n" +
		"goal, goal_confidence, topic_drift, missing_info, next_move, summary_so_far.\n" +
		"goal_confidence and topic_drift are numbers between 0 and 1. " +
		"missing_info and summary_so_far are lists of strings.\n" +
		"No extra keys. No commentary. No markdown."

	koiContractV2 = "The user stated the goal explicitly in the EXPLICIT GOAL SPEC section. " +
		"Do NOT invent a different goal: restate it and track the conversation against it.\n" +
		"STRICT OUTPUT: Return JSON only with EXACT fields:\n" +
		"goal, goal_alignment, topic_drift, missing_info, next_move, summary_so_far.\n" +
		"goal_alignment (how aligned the context and draft are with the stated goal) and topic_drift are numbers between 0 and 1. " +
		"missing_info and summary_so_far are lists of strings.\n" +
		"No extra keys. No commentary. No markdown."

	foxContract = "STRICT OUTPUT: Return JSON only with EXACT fields:\n" +
		"detected_emotion, power_dynamic, risk_flags, reply_options.\n" +
		"risk_flags is a list of strings. " +
		"reply_options is a list of 3 objects with EXACT fields: tag, text, why.\n" +
		"No extra keys. No commentary. No markdown."
)

// systemInstruction 人设指令加输出约定
func systemInstruction(p models.Persona, contract string) string {
	return p.SystemPrompt + "\n\n" + contract
}
