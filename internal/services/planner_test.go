package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamePlanner(t *testing.T) {
	planner := newNamePlanner("/in/photo.png")

	assert.Equal(t, "/out/a.webp", planner.Claim("/out/a.webp"))
	assert.Equal(t, "/out/a-2.webp", planner.Claim("/out/a.webp"))
	assert.Equal(t, "/out/a-3.webp", planner.Claim("/out/A.webp"))
	assert.Equal(t, "/in/photo-2.png", planner.Claim("/in/photo.png"))
}

func TestNamePlanner_SkipsTakenSuffix(t *testing.T) {
	planner := newNamePlanner()

	assert.Equal(t, "/out/a-2.jpg", planner.Claim("/out/a-2.jpg"))
	assert.Equal(t, "/out/a.jpg", planner.Claim("/out/a.jpg"))
	assert.Equal(t, "/out/a-3.jpg", planner.Claim("/out/a.jpg"))
}
