package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

type deltaEvent struct {
	Choices []deltaChoice `json:"choices"`
}

type deltaChoice struct {
	Delta deltaContent `json:"delta"`
}

type deltaContent struct {
	Content string `json:"content"`
}

// WriteDelta writes text as one data line in the same shape the decoder
// reads, followed by the blank line that ends an event.
func WriteDelta(w io.Writer, text string) error {
	payload, err := json.Marshal(deltaEvent{Choices: []deltaChoice{{Delta: deltaContent{Content: text}}}})
	if err != nil {
		return fmt.Errorf("stream: encoding delta: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// WriteDone writes the end-of-stream sentinel.
func WriteDone(w io.Writer) error {
	_, err := io.WriteString(w, "data: "+DoneSentinel+"\n\n")
	return err
}
