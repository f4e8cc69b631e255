package models

// 偏好旋钮默认值
const (
	DefaultSessionID         = "demo"
	DefaultAggressiveness    = 0.5
	DefaultInterruptiveness  = 0.3
	DefaultStructureStrength = 0.6
	DefaultRelationship      = "unknown"
)

// GoalType 目标类型
type GoalType string

const (
	GoalTypeBusiness           GoalType = "business"
	GoalTypeRelationship       GoalType = "relationship"
	GoalTypeConflictResolution GoalType = "conflict_resolution"
	GoalTypeSmallTalk          GoalType = "small_talk"
	GoalTypeOther              GoalType = "other"
)

// AnalyzeRequest 分析请求（v1）
type AnalyzeRequest struct {
	SessionID    string `json:"session_id"`
	Conversation string `json:"conversation"` // 用户粘贴的对话上下文，允许为空
	UserDraft    string `json:"user_draft"`   // 待优化的回复草稿，允许为空

	KoiPersonaID string `json:"koi_persona_id" validate:"required"`
	FoxPersonaID string `json:"fox_persona_id" validate:"required"`

	Aggressiveness    float64 `json:"aggressiveness" validate:"gte=0,lte=1"`
	Interruptiveness  float64 `json:"interruptiveness" validate:"gte=0,lte=1"`
	StructureStrength float64 `json:"structure_strength" validate:"gte=0,lte=1"`
}

// NewAnalyzeRequest 返回带默认值的请求，JSON解码前先用它占位
func NewAnalyzeRequest() AnalyzeRequest {
	return AnalyzeRequest{
		SessionID:         DefaultSessionID,
		Aggressiveness:    DefaultAggressiveness,
		Interruptiveness:  DefaultInterruptiveness,
		StructureStrength: DefaultStructureStrength,
	}
}

// GoalSpec 用户显式给出的对话目标（v2）
type GoalSpec struct {
	Goal            string   `json:"goal"`
	GoalType        GoalType `json:"goal_type" validate:"oneof=business relationship conflict_resolution small_talk other"`
	Relationship    string   `json:"relationship"`
	Constraints     []string `json:"constraints"`
	SuccessCriteria []string `json:"success_criteria"`
}

// AnalyzeRequestV2 分析请求（v2），额外携带目标说明
type AnalyzeRequestV2 struct {
	AnalyzeRequest
	GoalSpec GoalSpec `json:"goal_spec"`
}

// NewAnalyzeRequestV2 返回带默认值的v2请求
func NewAnalyzeRequestV2() AnalyzeRequestV2 {
	return AnalyzeRequestV2{
		AnalyzeRequest: NewAnalyzeRequest(),
		GoalSpec: GoalSpec{
			GoalType:     GoalTypeOther,
			Relationship: DefaultRelationship,
		},
	}
}

// KoiOutput Koi模块输出（v1，推断目标）
type KoiOutput struct {
	Goal           string   `json:"goal"`
	GoalConfidence float64  `json:"goal_confidence" validate:"gte=0,lte=1"`
	TopicDrift     float64  `json:"topic_drift" validate:"gte=0,lte=1"`
	MissingInfo    []string `json:"missing_info"`
	NextMove       string   `json:"next_move"`
	SummarySoFar   []string `json:"summary_so_far"`
}

// KoiOutputV2 Koi模块输出（v2），复述用户目标并给出对齐度
type KoiOutputV2 struct {
	Goal          string   `json:"goal"`
	GoalAlignment float64  `json:"goal_alignment" validate:"gte=0,lte=1"`
	TopicDrift    float64  `json:"topic_drift" validate:"gte=0,lte=1"`
	MissingInfo   []string `json:"missing_info"`
	NextMove      string   `json:"next_move"`
	SummarySoFar  []string `json:"summary_so_far"`
}

// ReplyOption 改写后的回复选项
type ReplyOption struct {
	Tag  string `json:"tag" validate:"required"`
	Text string `json:"text" validate:"required"`
	Why  string `json:"why" validate:"required"`
}

// FoxOutput Fox模块输出
type FoxOutput struct {
	DetectedEmotion string        `json:"detected_emotion"`
	PowerDynamic    string        `json:"power_dynamic"`
	RiskFlags       []string      `json:"risk_flags"`
	ReplyOptions    []ReplyOption `json:"reply_options" validate:"dive"`
}

// AnalyzeResponse 分析响应（v1）
type AnalyzeResponse struct {
	Koi KoiOutput `json:"koi"`
	Fox FoxOutput `json:"fox"`
}

// AnalyzeResponseV2 分析响应（v2）
type AnalyzeResponseV2 struct {
	Koi KoiOutputV2 `json:"koi"`
	Fox FoxOutput   `json:"fox"`
}
