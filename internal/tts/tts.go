package tts

import (
	"context"
	"fmt"
)

// Voice selects a synthesis voice, e.g. "he-IL-Wavenet-A".
type Voice struct {
	Name string `json:"name"`
}

type Tts interface {
	// Synthesize renders text to MP3 audio. A nil slice means nothing was produced.
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
	Name() string
}

// New returns the provider named by kind ("google" or "dummy").
func New(ctx context.Context, kind, credentialsFile string) (Tts, error) {
	switch kind {
	case "google":
		return NewWebGoogleTTSClient(ctx, credentialsFile)
	case "", "dummy":
		return NewDummyTts(), nil
	default:
		return nil, fmt.Errorf("unsupported tts type: %s", kind)
	}
}
