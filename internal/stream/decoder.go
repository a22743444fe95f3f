// Package stream decodes the line-oriented event stream returned by the AI
// gateway into text fragments.
//
// Each line on the wire is a comment (":" prefix), blank, or a data line of
// the form "data: <payload>". The payload "[DONE]" ends the stream. Any other
// payload is a JSON object whose fragment lives at choices[0].delta.content.
//
// A Decoder is fed raw chunks as they arrive from the network. Chunks may
// split lines anywhere; only completed lines are decoded and the unfinished
// tail stays buffered until more bytes arrive or the stream is closed.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

// DoneSentinel is the payload that marks the end of a stream.
const DoneSentinel = "[DONE]"

// DefaultMaxHeldBytes bounds how much of an unparseable line is held back
// waiting for the rest of its payload.
const DefaultMaxHeldBytes = 1 << 20

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the entry used to report dropped lines.
func WithLogger(entry *logrus.Entry) Option {
	return func(d *Decoder) {
		if entry != nil {
			d.log = entry
		}
	}
}

// WithMaxHeldBytes overrides DefaultMaxHeldBytes. Values below 1 are ignored.
func WithMaxHeldBytes(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxHeld = n
		}
	}
}

// Decoder turns chunks of an event stream into fragments. It has two states:
// streaming, and done. Once done, callbacks are never invoked again and
// further input is discarded.
//
// A Decoder is not safe for concurrent use. Independent requests each get
// their own Decoder.
type Decoder struct {
	onDelta func(string)
	onDone  func()
	log     *logrus.Entry
	maxHeld int

	buf  []byte
	held string // data line that failed to parse, awaiting its remainder
	done bool
}

// NewDecoder returns a Decoder that calls onDelta for every fragment in
// arrival order and onDone exactly once when decoding ends. Either callback
// may be nil.
func NewDecoder(onDelta func(text string), onDone func(), opts ...Option) *Decoder {
	d := &Decoder{
		onDelta: onDelta,
		onDone:  onDone,
		log:     logrus.NewEntry(logrus.StandardLogger()),
		maxHeld: DefaultMaxHeldBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Write feeds a chunk to the decoder and decodes every line it completes.
// It never fails; the int result is always len(p) so a Decoder can sit at
// the end of io.Copy.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.done {
		return len(p), nil
	}
	d.buf = append(d.buf, p...)
	for !d.done {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(d.buf[:i]), "\r")
		d.buf = d.buf[i+1:]
		if !d.handleLine(line, false) {
			break
		}
	}
	return len(p), nil
}

// Close flushes whatever is still buffered, including a final line with no
// trailing newline, and then reports completion. Close is idempotent.
func (d *Decoder) Close() error {
	if d.done {
		return nil
	}
	rest := string(d.buf)
	d.buf = nil
	if rest != "" {
		for _, line := range strings.Split(rest, "\n") {
			if d.done {
				break
			}
			d.handleLine(strings.TrimSuffix(line, "\r"), true)
		}
	}
	if d.held != "" {
		d.dropHeld("stream ended")
	}
	d.finish()
	return nil
}

// Done reports whether the decoder reached its terminal state.
func (d *Decoder) Done() bool {
	return d.done
}

// handleLine decodes one completed line. It returns false when processing
// of the current chunk must stop: either the stream is done or the line was
// held back because its payload did not parse yet. In final mode nothing is
// held back for later.
func (d *Decoder) handleLine(line string, final bool) bool {
	if d.held != "" {
		return d.resolveHeld(line, final)
	}
	kind, payload := classify(line)
	switch kind {
	case lineDone:
		d.finish()
		return false
	case lineData:
		text, err := fragment(payload)
		if err != nil {
			if final {
				d.log.WithError(err).Debug("skipping unparseable stream line")
				return true
			}
			d.held = line
			return false
		}
		d.emit(text)
	}
	return true
}

// resolveHeld retries a held line joined with the next completed line. When
// the join still fails but the new line stands on its own, the held line was
// corrupt rather than incomplete and is dropped.
func (d *Decoder) resolveHeld(line string, final bool) bool {
	joined := d.held + "\n" + line
	if kind, payload := classify(joined); kind == lineData {
		if text, err := fragment(payload); err == nil {
			d.held = ""
			d.emit(text)
			return true
		}
	}

	kind, payload := classify(line)
	if kind == lineDone || (kind == lineData && parses(payload)) {
		d.dropHeld("superseded by a complete line")
		return d.handleLine(line, final)
	}
	if len(joined) > d.maxHeld {
		d.dropHeld("held line exceeds limit")
		return true
	}
	d.held = joined
	return final
}

func (d *Decoder) dropHeld(reason string) {
	d.log.WithFields(logrus.Fields{
		"bytes":  len(d.held),
		"reason": reason,
	}).Warn("dropping unparseable stream line")
	d.held = ""
}

func (d *Decoder) emit(text string) {
	if text == "" || d.onDelta == nil {
		return
	}
	d.onDelta(text)
}

func (d *Decoder) finish() {
	if d.done {
		return
	}
	d.done = true
	d.buf = nil
	d.held = ""
	if d.onDone != nil {
		d.onDone()
	}
}

type lineKind int

const (
	lineSkip lineKind = iota
	lineData
	lineDone
)

// classify sorts a line into skip, data or done. Non-data fields such as
// "event:" or "id:" are skipped, as are data lines with an empty payload.
func classify(line string) (lineKind, string) {
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ":") {
		return lineSkip, ""
	}
	field, value, ok := strings.Cut(line, ":")
	if !ok || field != "data" {
		return lineSkip, ""
	}
	payload := strings.TrimSpace(value)
	switch payload {
	case "":
		return lineSkip, ""
	case DoneSentinel:
		return lineDone, ""
	}
	return lineData, payload
}

// fragment extracts choices[0].delta.content from a JSON payload. A missing
// path or a non-string value yields "" without error; only a payload that is
// not valid JSON fails.
func fragment(payload string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return "", err
	}
	obj, _ := v.(map[string]any)
	choices, _ := obj["choices"].([]any)
	if len(choices) == 0 {
		return "", nil
	}
	choice, _ := choices[0].(map[string]any)
	delta, _ := choice["delta"].(map[string]any)
	content, _ := delta["content"].(string)
	return content, nil
}

func parses(payload string) bool {
	_, err := fragment(payload)
	return err == nil
}
