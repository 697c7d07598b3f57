package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageSequence(t *testing.T) {
	var visited []Stage
	for stage := StageCreated; !stage.Terminal(); stage = stage.next() {
		visited = append(visited, stage)
	}

	assert.Equal(t, []Stage{
		StageCreated,
		StageProductCreated,
		StageReconciled,
		StageVariantsBulkCreated,
		StageInventorySet,
	}, visited)
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, StageVariantUpdated.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageCreated.Terminal())
	assert.Equal(t, StageFailed, StageFailed.next())
}
