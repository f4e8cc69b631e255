package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"koi_fox_mini/internal/personas"
)

func TestRenderPersonas_GroupedByModule(t *testing.T) {
	out := renderPersonas(personas.NewRegistry())

	koi := strings.Index(out, "KOI")
	fox := strings.Index(out, "FOX")
	assert.Less(t, koi, fox)

	// 模块内保持注册顺序，且人设出现在自己模块的框内
	assert.Less(t, koi, strings.Index(out, "koi_entrepreneur_driver"))
	assert.Less(t, strings.Index(out, "koi_entrepreneur_driver"), strings.Index(out, "koi_coach_clarifier"))
	assert.Less(t, strings.Index(out, "koi_coach_clarifier"), fox)
	assert.Less(t, fox, strings.Index(out, "fox_workplace_leader"))
	assert.Less(t, strings.Index(out, "fox_workplace_leader"), strings.Index(out, "fox_empath_deescalator"))
}
