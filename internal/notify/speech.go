package notify

import (
	"context"
	"encoding/base64"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
	"github.com/atiaron/taskflow/internal/tts"
)

// SpeechSink attaches a spoken rendition of the body before handing off to next.
// Synthesis failures are logged and the notification goes out silent.
type SpeechSink struct {
	next   Notifier
	speech tts.Tts
	voice  tts.Voice
	logger *logger.Log
}

func NewSpeechSink(next Notifier, speech tts.Tts, voice string) *SpeechSink {
	return &SpeechSink{
		next:   next,
		speech: speech,
		voice:  tts.Voice{Name: voice},
		logger: logger.New(),
	}
}

func (s *SpeechSink) Show(ctx context.Context, n models.Notification) error {
	if n.Audio == "" && n.Body != "" {
		audio, err := s.speech.Synthesize(ctx, n.Title+". "+n.Body, s.voice)
		if err != nil {
			s.logger.WithError(err).Warn("speech synthesis failed")
		} else if len(audio) > 0 {
			n.Audio = base64.StdEncoding.EncodeToString(audio)
		}
	}
	return s.next.Show(ctx, n)
}
