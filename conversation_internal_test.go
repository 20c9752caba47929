package broilr

import (
	"context"
	"testing"

	"github.com/aretw0/broilr/pkg/adapters/memory"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_RejectedStepLeavesTranscript(t *testing.T) {
	conv, err := New(memory.NewBackend(), "julia")
	require.NoError(t, err)

	broken := domain.NewSession()
	broken.Stage = domain.StageCooking
	conv.session = broken
	before := conv.Transcript()

	replies, err := conv.Submit(context.Background(), "next")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	assert.Empty(t, replies)
	assert.Equal(t, before, conv.Transcript())

	// clear still recovers the conversation
	_, err = conv.Submit(context.Background(), "clear")
	require.NoError(t, err)
	assert.Equal(t, domain.StageDish, conv.Stage())
}
