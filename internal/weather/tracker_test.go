package weather

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupTrackerSupersedes(t *testing.T) {
	tr := NewLookupTracker()

	ctx1, tok1 := tr.Begin(context.Background(), "alice")
	assert.True(t, tr.Current(tok1))

	ctx2, tok2 := tr.Begin(context.Background(), "alice")
	assert.False(t, tr.Current(tok1))
	assert.True(t, tr.Current(tok2))
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())

	// Finishing the stale lookup must not disturb the newer one.
	tr.Finish(tok1)
	assert.True(t, tr.Current(tok2))
	assert.NoError(t, ctx2.Err())

	tr.Finish(tok2)
	assert.False(t, tr.Current(tok2))
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestLookupTrackerScopesAreIndependent(t *testing.T) {
	tr := NewLookupTracker()

	ctxA, tokA := tr.Begin(context.Background(), "alice")
	_, tokB := tr.Begin(context.Background(), "bob")

	assert.True(t, tr.Current(tokA))
	assert.True(t, tr.Current(tokB))
	assert.NoError(t, ctxA.Err())
	assert.NotEqual(t, tokA.ID, tokB.ID)
}

func TestLookupTrackerFollowsParentContext(t *testing.T) {
	tr := NewLookupTracker()
	parent, cancel := context.WithCancel(context.Background())

	ctx, tok := tr.Begin(parent, "")
	cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, tr.Current(tok))
	tr.Finish(tok)
}
