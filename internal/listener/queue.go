package listener

import "context"

// FrameQueue is the bounded handoff between the audio capture
// callback and the segmenter loop. The producer never blocks: when the
// queue is full the oldest frame is dropped to make room.
type FrameQueue struct {
	ch chan []byte
}

func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = 50
	}
	return &FrameQueue{ch: make(chan []byte, capacity)}
}

// Push enqueues a frame, dropping the oldest one when full. Safe to
// call from the audio callback.
func (q *FrameQueue) Push(frame []byte) {
	for {
		select {
		case q.ch <- frame:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

// Pop blocks until a frame is available or the context ends.
func (q *FrameQueue) Pop(ctx context.Context) ([]byte, error) {
	select {
	case frame := <-q.ch:
		return frame, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain discards everything currently queued.
func (q *FrameQueue) Drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

// Len reports the number of queued frames.
func (q *FrameQueue) Len() int {
	return len(q.ch)
}
