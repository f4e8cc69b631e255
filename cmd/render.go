package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"koi_fox_mini/internal/models"
	"koi_fox_mini/internal/personas"
)

var moduleColors = map[models.Module]lipgloss.Color{
	models.ModuleKoi: lipgloss.Color("#FF8C42"),
	models.ModuleFox: lipgloss.Color("#5B8DEF"),
}

// renderPersonas 按模块分组的人设列表，终端查看用
func renderPersonas(registry *personas.Registry) string {
	var blocks []string
	for _, module := range []models.Module{models.ModuleKoi, models.ModuleFox} {
		var lines []string
		for _, p := range registry.ListByModule(module) {
			id := lipgloss.NewStyle().Bold(true).Render(p.ID)
			desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(p.Description)
			lines = append(lines, fmt.Sprintf("%s  %s\n  %s", id, p.Name, desc))
		}
		if len(lines) == 0 {
			continue
		}
		head := lipgloss.NewStyle().
			Bold(true).
			Foreground(moduleColors[module]).
			Render(strings.ToUpper(string(module)))
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Render(fmt.Sprintf("%s\n%s", head, strings.Join(lines, "\n")))
		blocks = append(blocks, box)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
