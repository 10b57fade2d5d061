package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictationJoinsChunks(t *testing.T) {
	chunks := make(chan string)
	dictation := StartDictation(context.Background(), chunks)

	chunks <- "There is a large pothole"
	chunks <- "on Main Street"
	chunks <- "near the school crossing."
	close(chunks)

	text, err := dictation.Wait()
	require.NoError(t, err)
	assert.Equal(t, "There is a large pothole on Main Street near the school crossing.", text)
}

func TestDictationSkipsEmptyChunks(t *testing.T) {
	chunks := make(chan string)
	dictation := StartDictation(context.Background(), chunks)

	chunks <- "  Streetlight out  "
	chunks <- "   "
	chunks <- "on Oak Avenue"
	close(chunks)

	text, err := dictation.Wait()
	require.NoError(t, err)
	assert.Equal(t, "Streetlight out on Oak Avenue", text)
}

func TestDictationAbortKeepsPartialText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chunks := make(chan string)
	dictation := StartDictation(ctx, chunks)

	chunks <- "Water leak at"
	cancel()

	text, err := dictation.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Water leak at", text)
}

func TestAssembleChunks(t *testing.T) {
	text, err := AssembleChunks(context.Background(), []string{"Pothole", "on Main Street"})
	require.NoError(t, err)
	assert.Equal(t, "Pothole on Main Street", text)
}

func TestAssembleChunksEmptyBatch(t *testing.T) {
	text, err := AssembleChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestAssembleChunksReturnsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		AssembleChunks(ctx, []string{"Water leak at", "Oak Avenue", "near the park"})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AssembleChunks still blocked after context cancellation")
	}
}

func TestDictationEmptyStream(t *testing.T) {
	chunks := make(chan string)
	dictation := StartDictation(context.Background(), chunks)
	close(chunks)

	text, err := dictation.Wait()
	require.NoError(t, err)
	assert.Empty(t, text)
}
