package models

// Module 人设所属的分析模块
type Module string

const (
	// ModuleKoi 目标/方向分析（Koi）
	ModuleKoi Module = "koi"
	// ModuleFox 策略/语气分析（Fox）
	ModuleFox Module = "fox"
)

// Valid 判断模块取值是否合法
func (m Module) Valid() bool {
	return m == ModuleKoi || m == ModuleFox
}

// Persona 人设定义，启动时创建，之后只读
type Persona struct {
	ID           string // 唯一标识
	Name         string // 展示名称
	Module       Module // 所属模块
	Description  string // 人设描述
	SystemPrompt string // 系统指令，不对外暴露
}

// Item 转换为对外展示的人设条目
func (p Persona) Item() PersonaItem {
	return PersonaItem{
		ID:          p.ID,
		Name:        p.Name,
		Module:      p.Module,
		Description: p.Description,
	}
}

// PersonaItem 人设列表条目
type PersonaItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Module      Module `json:"module"`
	Description string `json:"description"`
}

// PersonaListResponse 人设列表响应
type PersonaListResponse struct {
	Personas []PersonaItem `json:"personas"`
}
