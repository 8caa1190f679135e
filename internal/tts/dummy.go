package tts

import (
	"context"

	"github.com/atiaron/taskflow/internal/logger"
)

type DummyTts struct {
}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) Synthesize(_ context.Context, text string, voice Voice) ([]byte, error) {
	logger.New().Debug("no tts configured. ignoring synthesis request")
	return nil, nil
}

func (d *DummyTts) Name() string {
	return "dummy"
}
