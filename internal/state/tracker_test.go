package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkDeletedIsIdempotent(t *testing.T) {
	tracker := NewTracker("posts")

	assert.False(t, tracker.IsDeleted("1"))

	tracker.MarkDeleted("1")
	assert.True(t, tracker.IsDeleted("1"))

	tracker.MarkDeleted("1")
	assert.True(t, tracker.IsDeleted("1"))

	assert.False(t, tracker.IsDeleted("2"))
}

func TestResetClearsAllDeletions(t *testing.T) {
	tracker := NewTracker("posts")

	tracker.MarkDeleted("1")
	tracker.MarkDeleted("2")
	tracker.Reset()

	assert.False(t, tracker.IsDeleted("1"))
	assert.False(t, tracker.IsDeleted("2"))
}

func TestTrackersAreScopedByAPIName(t *testing.T) {
	posts := NewTracker("posts")
	payments := NewTracker("payments")

	posts.MarkDeleted("1")

	assert.True(t, posts.IsDeleted("1"))
	assert.False(t, payments.IsDeleted("1"))
}
