// Package assist orchestrates the explanation pipeline: OCR, text cleanup,
// intent classification, prompt construction, streamed generation,
// translation and narration.
//
// Fault policy: nothing in this pipeline reaches the user as a raw technical
// error. Extraction faults collapse to the no-text warning, generation faults
// arrive as the client's fixed fallback text, and translation or narration
// faults silently degrade to untranslated text or missing audio.
package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sahaayika/internal/logger"
	"sahaayika/internal/ocr"
	"sahaayika/internal/prompt"
	"sahaayika/internal/sanitize"
	"sahaayika/internal/speech"
	"sahaayika/internal/translate"
)

// User-visible warnings, the only failure states shown explicitly.
const (
	WarnNoText     = "⚠️ Could not extract any text from the uploaded image. Please try a clearer image."
	WarnNoQuestion = "⚠️ Please enter or record a question."
)

// Generator streams a reply for a prompt. Faults are folded into the reply
// text, never returned as errors (see internal/generate).
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// Explanation is the outcome of an explain or doubt request.
type Explanation struct {
	// Text is the (possibly translated) reply shown to the user.
	Text string `json:"text"`

	// AudioPath is the narrated MP3 artifact, empty when synthesis was
	// unavailable.
	AudioPath string `json:"audio_path,omitempty"`
}

// DoubtRequest carries a follow-up question over a previously explained
// document image.
type DoubtRequest struct {
	// Question is the typed question text.
	Question string

	// AudioPath is an optional recorded voice question. When present its
	// transcript replaces Question entirely.
	AudioPath string

	// Language selects translation and narration of the answer.
	Language string

	// Profile is accepted for parity with the explain action; the doubt
	// prompt does not use audience framing.
	Profile prompt.Profile

	// ImagePath is the original document image. OCR is re-run on it for
	// every doubt; no context is cached between requests.
	ImagePath string
}

// Service wires the pipeline stages together. Each request runs as one
// synchronous chain with no state shared across invocations.
type Service struct {
	engine      ocr.Engine
	generator   Generator
	translator  translate.Translator
	synthesizer speech.Synthesizer
	transcriber speech.Transcriber
	log         zerolog.Logger
}

// New creates the pipeline service from its collaborators.
func New(engine ocr.Engine, generator Generator, translator translate.Translator, synthesizer speech.Synthesizer, transcriber speech.Transcriber) *Service {
	return &Service{
		engine:      engine,
		generator:   generator,
		translator:  translator,
		synthesizer: synthesizer,
		transcriber: transcriber,
		log:         logger.WithComponent("assist"),
	}
}

// ExplainImage runs the full pipeline for a document image: OCR, cleanup,
// classification, generation, translation and narration. The reply text is
// prefixed with the elapsed processing time.
func (s *Service) ExplainImage(ctx context.Context, imagePath, language string, profile prompt.Profile) Explanation {
	start := time.Now()

	extracted := s.extractClean(ctx, imagePath)
	if extracted == "" {
		s.log.Warn().Str("image", imagePath).Msg("No text extracted from image")
		return Explanation{Text: WarnNoText}
	}

	s.log.Info().
		Str("image", imagePath).
		Str("language", language).
		Str("profile", string(profile)).
		Int("extracted_length", len(extracted)).
		Msg("Explaining document image")

	reply := s.generator.Generate(ctx, prompt.BuildExplain(profile, extracted))
	text, audioPath := s.postProcess(ctx, reply, language)

	return Explanation{
		Text:      fmt.Sprintf("⏱️ Took %.2f sec\n\n%s", time.Since(start).Seconds(), text),
		AudioPath: audioPath,
	}
}

// HandleDoubt answers a follow-up question over the original document image.
// A recorded voice question is transcribed first and takes precedence over
// typed text; without any question text no generation request is made.
func (s *Service) HandleDoubt(ctx context.Context, req DoubtRequest) Explanation {
	question := req.Question
	if req.AudioPath != "" {
		transcript, err := s.transcriber.Transcribe(ctx, req.AudioPath)
		if err != nil {
			s.log.Warn().Err(err).Str("audio", req.AudioPath).Msg("Transcription failed, treating question as empty")
			transcript = ""
		}
		question = transcript
	}

	if strings.TrimSpace(question) == "" {
		s.log.Warn().Msg("Doubt request without question text")
		return Explanation{Text: WarnNoQuestion}
	}

	s.log.Info().
		Str("image", req.ImagePath).
		Str("language", req.Language).
		Int("question_length", len(question)).
		Msg("Answering follow-up question")

	// The document context is re-derived from the image on every doubt.
	docContext := s.extractClean(ctx, req.ImagePath)

	reply := s.generator.Generate(ctx, prompt.BuildDoubt(docContext, question))
	text, audioPath := s.postProcess(ctx, reply, req.Language)

	return Explanation{Text: text, AudioPath: audioPath}
}

// extractClean runs OCR and sanitization, mapping any extraction fault to
// empty text.
func (s *Service) extractClean(ctx context.Context, imagePath string) string {
	raw, err := s.engine.Extract(ctx, imagePath)
	if err != nil {
		s.log.Error().Err(err).Str("image", imagePath).Msg("OCR extraction failed")
		return ""
	}
	return sanitize.Extracted(raw)
}

// postProcess sanitizes the model reply, translates it for the selected
// language and narrates it. Translation faults fall back to the cleaned
// English text; narration faults yield no audio.
func (s *Service) postProcess(ctx context.Context, reply, language string) (string, string) {
	cleaned := sanitize.Generated(reply)

	text := cleaned
	if code, ok := translate.TargetCode(language); ok {
		translated, err := s.translator.Translate(ctx, cleaned, code)
		if err != nil {
			s.log.Warn().Err(err).Str("target", code).Msg("Translation failed, returning untranslated text")
		} else {
			text = translated
		}
	}

	audioPath, err := s.synthesizer.Synthesize(ctx, text, speech.VoiceCode(language))
	if err != nil {
		s.log.Warn().Err(err).Str("language", language).Msg("Speech synthesis failed, returning text only")
		audioPath = ""
	}

	return text, audioPath
}
