package services

import (
	"context"
	"strings"
	"sync"
)

// Dictation assembles incremental final-transcript chunks into a single
// description. Capture stops when the chunk stream closes or the context is
// canceled; cancellation aborts the capture with the context error.
type Dictation struct {
	mu   sync.Mutex
	text strings.Builder
	err  error
	done chan struct{}
}

// StartDictation begins consuming transcript chunks. The caller keeps
// ownership of the channel and signals end-of-speech by closing it.
func StartDictation(ctx context.Context, chunks <-chan string) *Dictation {
	d := &Dictation{done: make(chan struct{})}
	go d.run(ctx, chunks)
	return d
}

func (d *Dictation) run(ctx context.Context, chunks <-chan string) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			d.err = ctx.Err()
			d.mu.Unlock()
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			d.mu.Lock()
			if d.text.Len() > 0 {
				d.text.WriteByte(' ')
			}
			d.text.WriteString(chunk)
			d.mu.Unlock()
		}
	}
}

// Text returns the transcript assembled so far.
func (d *Dictation) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text.String()
}

// Wait blocks until capture ends and returns the full transcript. A non-nil
// error means the capture was aborted; the partial transcript is still
// returned so the caller can decide what to do with it.
func (d *Dictation) Wait() (string, error) {
	<-d.done
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text.String(), d.err
}

// AssembleChunks runs a capture over a fixed batch of chunks. The feed is
// buffered to the batch size and closed before the capture starts, so the
// caller never blocks on a capture that ctx has already aborted.
func AssembleChunks(ctx context.Context, chunks []string) (string, error) {
	feed := make(chan string, len(chunks))
	for _, chunk := range chunks {
		feed <- chunk
	}
	close(feed)
	return StartDictation(ctx, feed).Wait()
}
