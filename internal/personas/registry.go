// Package personas 提供内置人设注册表
package personas

import (
	"fmt"

	"koi_fox_mini/internal/models"
)

// builtin 内置人设，顺序即列表顺序
var builtin = []models.Persona{
	{
		ID:          "koi_entrepreneur_driver",
		Name:        "Koi · Entrepreneur Driver",
		Module:      models.ModuleKoi,
		Description: "Fast, direct, outcome-driven. Pulls conversation back to goals and next steps.",
		SystemPrompt: "You are [KOI · Entrepreneur Driver].\n" +
			"Primary responsibility: define the conversation goal, detect topic drift, and propose the next move.\n" +
			"Style: direct, structured, outcome-first, but not rude.",
	},
	{
		ID:          "koi_coach_clarifier",
		Name:        "Koi · Coach Clarifier",
		Module:      models.ModuleKoi,
		Description: "Gentle and Socratic. Clarifies objectives and constraints with minimal interruption.",
		SystemPrompt: "You are [KOI · Coach Clarifier].\n" +
			"Primary responsibility: clarify the goal, reduce ambiguity, and guide toward a next step.\n" +
			"Style: calm, respectful, clear.",
	},
	{
		ID:          "fox_workplace_leader",
		Name:        "Fox · Workplace Leader",
		Module:      models.ModuleFox,
		Description: "Authoritative but polite. Sets boundaries and drives progress without offending.",
		SystemPrompt: "You are [FOX · Workplace Leader].\n" +
			"Primary responsibility: analyze emotion/power dynamics and propose optimized reply options.\n" +
			"Style: confident, professional, boundary-aware.",
	},
	{
		ID:          "fox_empath_deescalator",
		Name:        "Fox · Empath De-escalator",
		Module:      models.ModuleFox,
		Description: "Warm and calming. Reduces tension and repairs rapport while keeping progress possible.",
		SystemPrompt: "You are [FOX · Empath De-escalator].\n" +
			"Primary responsibility: de-escalate tension, maintain sincerity, and provide effective, gentle replies.\n" +
			"Style: warm, emotionally intelligent, non-judgmental.",
	},
}

// Registry 只读人设注册表，构建后不再修改，可并发读取
type Registry struct {
	ordered []models.Persona
	byID    map[string]models.Persona
}

// NewRegistry 用内置人设构建注册表
func NewRegistry() *Registry {
	return newRegistry(builtin)
}

func newRegistry(list []models.Persona) *Registry {
	r := &Registry{
		ordered: make([]models.Persona, 0, len(list)),
		byID:    make(map[string]models.Persona, len(list)),
	}
	for _, p := range list {
		if _, dup := r.byID[p.ID]; dup {
			panic("重复的人设ID: " + p.ID)
		}
		r.ordered = append(r.ordered, p)
		r.byID[p.ID] = p
	}
	return r
}

// List 按插入顺序返回全部人设
func (r *Registry) List() []models.Persona {
	out := make([]models.Persona, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ListByModule 返回指定模块的人设
func (r *Registry) ListByModule(module models.Module) []models.Persona {
	var out []models.Persona
	for _, p := range r.ordered {
		if p.Module == module {
			out = append(out, p)
		}
	}
	return out
}

// Get 按ID获取人设
func (r *Registry) Get(id string) (models.Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return models.Persona{}, &models.AnalysisError{
			Kind: models.KindInput,
			Err:  fmt.Errorf("%w: %s", models.ErrPersonaNotFound, id),
		}
	}
	return p, nil
}

// Items 返回对外展示的人设列表
func (r *Registry) Items() []models.PersonaItem {
	items := make([]models.PersonaItem, 0, len(r.ordered))
	for _, p := range r.ordered {
		items = append(items, p.Item())
	}
	return items
}
