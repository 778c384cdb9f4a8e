// Package speech narrates explanations to audio files and transcribes
// recorded voice questions.
//
// Both capabilities are best-effort in the pipeline: a synthesis fault means
// the user gets text without audio, a transcription fault means an empty
// question. Neither is ever surfaced as a raw error to the end user.
package speech

import "context"

// voiceCodes maps user-facing language selections to synthesis voices.
var voiceCodes = map[string]string{
	"Hindi":   "hi",
	"Tamil":   "ta",
	"English": "en",
}

// VoiceCode returns the speech synthesis voice for a language selection,
// defaulting to English for unrecognized values.
func VoiceCode(language string) string {
	if code, ok := voiceCodes[language]; ok {
		return code
	}
	return "en"
}

// Synthesizer narrates text to an audio file and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceCode string) (string, error)
}

// Transcriber converts a recorded audio question to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
