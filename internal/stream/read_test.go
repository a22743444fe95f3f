package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOneByteReads(t *testing.T) {
	input := ": hello\n" + dataLine("Grow ") + dataLine("faster") + "data: [DONE]\n"
	rec := &recorder{}

	err := Decode(context.Background(), iotest.OneByteReader(strings.NewReader(input)), rec.onDelta, rec.onDone)

	require.NoError(t, err)
	assert.Equal(t, []string{"Grow ", "faster", "<done>"}, rec.events)
}

func TestDecodeNaturalEndFlushesTail(t *testing.T) {
	input := dataLine("a") + `data: {"choices":[{"delta":{"content":"b"}}]}`
	rec := &recorder{}

	err := Decode(context.Background(), strings.NewReader(input), rec.onDelta, rec.onDone)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "<done>"}, rec.events)
}

func TestDecodeStopsReadingAfterDone(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader(dataLine("x")+"data: [DONE]\n"),
		iotest.ErrReader(errors.New("read after done")),
	)
	rec := &recorder{}

	err := Decode(context.Background(), r, rec.onDelta, rec.onDone)

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "<done>"}, rec.events)
}

func TestDecodeReadErrorIsTerminal(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(dataLine("partial")), iotest.ErrReader(boom))
	rec := &recorder{}

	err := Decode(context.Background(), r, rec.onDelta, rec.onDone)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"partial"}, rec.deltas)
	assert.Zero(t, rec.dones)
}

func TestDecodeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}

	err := Decode(ctx, strings.NewReader(dataLine("never")), rec.onDelta, rec.onDone)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.events)
}

func TestFragmentsYieldsInOrder(t *testing.T) {
	input := dataLine("one") + dataLine("two") + "data: [DONE]\n" + dataLine("three")

	var got []string
	for text, err := range Fragments(context.Background(), iotest.HalfReader(strings.NewReader(input))) {
		require.NoError(t, err)
		got = append(got, text)
	}

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestFragmentsCannotRestart(t *testing.T) {
	seq := Fragments(context.Background(), strings.NewReader(dataLine("once")))

	var first []string
	for text, err := range seq {
		require.NoError(t, err)
		first = append(first, text)
	}
	assert.Equal(t, []string{"once"}, first)

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrConsumed)
}

func TestFragmentsEarlyBreak(t *testing.T) {
	input := dataLine("a") + dataLine("b") + dataLine("c")

	var got []string
	for text := range Fragments(context.Background(), strings.NewReader(input)) {
		got = append(got, text)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestFragmentsReadError(t *testing.T) {
	boom := errors.New("upstream closed")
	r := io.MultiReader(strings.NewReader(dataLine("kept")), iotest.ErrReader(boom))

	var got []string
	var lastErr error
	for text, err := range Fragments(context.Background(), r) {
		if err != nil {
			lastErr = err
			continue
		}
		got = append(got, text)
	}

	assert.Equal(t, []string{"kept"}, got)
	assert.ErrorIs(t, lastErr, boom)
}
