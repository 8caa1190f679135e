package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/atiaron/taskflow/internal/logger"
)

type WebGoogleTTS struct {
	client *texttospeech.Client
	logger *logger.Log
}

// NewWebGoogleTTSClient uses credentialsFile when given, application default credentials otherwise.
func NewWebGoogleTTSClient(ctx context.Context, credentialsFile string) (*WebGoogleTTS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	return &WebGoogleTTS{
		client: client,
		logger: logger.New(),
	}, nil
}

// languageCode extracts the locale prefix of a voice name ("he-IL-Wavenet-A" -> "he-IL").
func languageCode(voiceName string) string {
	parts := strings.Split(voiceName, "-")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	return "he-IL"
}

// cleanText drops characters that read badly when spoken.
func cleanText(text string) string {
	r := strings.NewReplacer("[", "", "]", "", "\n", ". ")
	return strings.TrimSpace(r.Replace(text))
}

func (g *WebGoogleTTS) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	text = cleanText(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode(voice.Name),
			Name:         voice.Name,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3,
			SpeakingRate:    1.0,
			SampleRateHertz: 22050,
		},
	}

	g.logger.Debug(fmt.Sprintf("synthesizing %d chars with voice %s", len(text), voice.Name))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received from Google TTS")
	}

	return resp.AudioContent, nil
}

func (g *WebGoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech"
}

func (g *WebGoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
