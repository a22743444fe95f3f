package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync/atomic"
)

// readSize is the size of a single Read issued against the body.
const readSize = 32 * 1024

// ErrConsumed is yielded when a fragment sequence is ranged over twice.
var ErrConsumed = errors.New("stream: fragment sequence already consumed")

// Decode reads r to the end, reporting fragments through onDelta and
// completion through onDone. It stops reading as soon as the [DONE] sentinel
// is seen. A read error is returned as is and ends decoding without calling
// onDone; so does a cancelled context, checked before every read.
func Decode(ctx context.Context, r io.Reader, onDelta func(text string), onDone func(), opts ...Option) error {
	d := NewDecoder(onDelta, onDone, opts...)
	buf := make([]byte, readSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			d.Write(buf[:n])
		}
		if d.Done() {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return d.Close()
		}
		if err != nil {
			return fmt.Errorf("stream: reading body: %w", err)
		}
	}
}

// Fragments returns the fragments of r as a lazy sequence. The sequence is
// finite and cannot be restarted: ranging over it a second time yields
// ErrConsumed. Read errors and context cancellation are yielded once as the
// final element.
func Fragments(ctx context.Context, r io.Reader, opts ...Option) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrConsumed)
			return
		}

		var pending []string
		d := NewDecoder(func(text string) {
			pending = append(pending, text)
		}, nil, opts...)

		buf := make([]byte, readSize)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			n, err := r.Read(buf)
			if n > 0 {
				d.Write(buf[:n])
			}
			if errors.Is(err, io.EOF) {
				d.Close()
			}
			for _, text := range pending {
				if !yield(text, nil) {
					return
				}
			}
			pending = pending[:0]
			if d.Done() {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("stream: reading body: %w", err))
				return
			}
		}
	}
}
