package transcriber

import (
	"context"
)

// Transcriber turns a local audio file into text
type Transcriber interface {
	// Transcribe reads the audio file at path and returns its transcript
	Transcribe(ctx context.Context, path string) (string, error)
}
