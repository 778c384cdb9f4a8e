package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sahaayika/internal/ocr"
	"sahaayika/internal/prompt"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Extract(ctx context.Context, imagePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeEngine) ExtractWithMetadata(ctx context.Context, imagePath string) (*ocr.Result, error) {
	text, err := f.Extract(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return &ocr.Result{Text: text}, nil
}

type fakeGenerator struct {
	reply   string
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, p string) string {
	f.calls++
	f.prompts = append(f.prompts, p)
	return f.reply
}

type fakeTranslator struct {
	result string
	err    error
	calls  int
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetCode string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

type fakeSynthesizer struct {
	path string
	err  error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, voiceCode string) (string, error) {
	return f.path, f.err
}

type fakeTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	return f.transcript, f.err
}

func newTestService(engine *fakeEngine, gen *fakeGenerator, tr *fakeTranslator, syn *fakeSynthesizer, sc *fakeTranscriber) *Service {
	return New(engine, gen, tr, syn, sc)
}

func TestExplainImageFullPipeline(t *testing.T) {
	engine := &fakeEngine{text: "** Take 500 mg tablet twice daily"}
	gen := &fakeGenerator{reply: "**This is a medicine.** Take it after food."}
	tr := &fakeTranslator{result: "यह एक दवा है। खाने के बाद लें।"}
	syn := &fakeSynthesizer{path: "audio_abc123.mp3"}

	got := newTestService(engine, gen, tr, syn, &fakeTranscriber{}).
		ExplainImage(context.Background(), "label.jpg", "Hindi", prompt.ProfileWoman)

	if !strings.HasPrefix(got.Text, "⏱️ Took ") {
		t.Errorf("Text missing timing prefix: %q", got.Text)
	}
	if !strings.HasSuffix(got.Text, tr.result) {
		t.Errorf("Text = %q, want suffix %q", got.Text, tr.result)
	}
	if got.AudioPath != "audio_abc123.mp3" {
		t.Errorf("AudioPath = %q", got.AudioPath)
	}

	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
	sent := gen.prompts[0]
	if !strings.Contains(sent, "Explain in very simple language for a rural woman.") {
		t.Errorf("prompt missing profile instruction: %q", sent)
	}
	if !strings.Contains(sent, "Take 500 mg tablet twice daily") {
		t.Errorf("prompt missing cleaned document text: %q", sent)
	}
	if strings.Contains(sent, "**") {
		t.Errorf("prompt carries markdown decoration: %q", sent)
	}
	if !strings.Contains(sent, "safety risks") {
		t.Errorf("dosage text should select safety suffix: %q", sent)
	}
}

func TestExplainImageNoTextWarnsWithoutGenerating(t *testing.T) {
	engine := &fakeEngine{text: "   \nTesseract OCR failed\n"}
	gen := &fakeGenerator{reply: "should never be used"}

	got := newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscriber{}).
		ExplainImage(context.Background(), "blurry.jpg", "English", prompt.ProfileOther)

	if got.Text != WarnNoText {
		t.Errorf("Text = %q, want warning", got.Text)
	}
	if got.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty", got.AudioPath)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestExplainImageOCRFaultWarns(t *testing.T) {
	engine := &fakeEngine{err: errors.New("binary exploded")}
	gen := &fakeGenerator{}

	got := newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscriber{}).
		ExplainImage(context.Background(), "label.jpg", "English", prompt.ProfileWoman)

	if got.Text != WarnNoText {
		t.Errorf("Text = %q, want warning", got.Text)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestExplainImageEnglishSkipsTranslation(t *testing.T) {
	engine := &fakeEngine{text: "Land ownership certificate"}
	gen := &fakeGenerator{reply: "This document proves land ownership."}
	tr := &fakeTranslator{result: "should not be used"}

	got := newTestService(engine, gen, tr, &fakeSynthesizer{path: "a.mp3"}, &fakeTranscriber{}).
		ExplainImage(context.Background(), "deed.png", "English", prompt.ProfileElderly)

	if tr.calls != 0 {
		t.Errorf("translator called %d times, want 0 for English", tr.calls)
	}
	if !strings.HasSuffix(got.Text, gen.reply) {
		t.Errorf("Text = %q, want untranslated reply", got.Text)
	}
}

func TestExplainImageTranslationFaultFallsBack(t *testing.T) {
	engine := &fakeEngine{text: "Crop insurance form"}
	gen := &fakeGenerator{reply: "Fill the form before June."}
	tr := &fakeTranslator{err: errors.New("service unavailable")}

	got := newTestService(engine, gen, tr, &fakeSynthesizer{path: "a.mp3"}, &fakeTranscriber{}).
		ExplainImage(context.Background(), "form.png", "Tamil", prompt.ProfileFarmer)

	if !strings.HasSuffix(got.Text, gen.reply) {
		t.Errorf("Text = %q, want untranslated fallback %q", got.Text, gen.reply)
	}
}

func TestExplainImageSynthesisFaultYieldsNoAudio(t *testing.T) {
	engine := &fakeEngine{text: "Ration card details"}
	gen := &fakeGenerator{reply: "This is a ration card."}
	syn := &fakeSynthesizer{err: errors.New("tts down")}

	got := newTestService(engine, gen, &fakeTranslator{}, syn, &fakeTranscriber{}).
		ExplainImage(context.Background(), "card.jpg", "English", prompt.ProfileWoman)

	if got.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty on synthesis fault", got.AudioPath)
	}
	if !strings.HasSuffix(got.Text, gen.reply) {
		t.Errorf("Text = %q, want reply text despite missing audio", got.Text)
	}
}

func TestHandleDoubtNoQuestionWarns(t *testing.T) {
	gen := &fakeGenerator{}
	engine := &fakeEngine{text: "irrelevant"}

	got := newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscriber{}).
		HandleDoubt(context.Background(), DoubtRequest{
			Language:  "English",
			ImagePath: "doc.jpg",
		})

	if got.Text != WarnNoQuestion {
		t.Errorf("Text = %q, want question warning", got.Text)
	}
	if got.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty", got.AudioPath)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
	if engine.calls != 0 {
		t.Errorf("OCR called %d times, want 0 before question check", engine.calls)
	}
}

func TestHandleDoubtTranscriptOverridesTypedText(t *testing.T) {
	engine := &fakeEngine{text: "Pesticide usage label"}
	gen := &fakeGenerator{reply: "Spray in the morning."}
	sc := &fakeTranscriber{transcript: "when should I spray"}

	newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, sc).
		HandleDoubt(context.Background(), DoubtRequest{
			Question:  "typed question to be ignored",
			AudioPath: "question.wav",
			Language:  "English",
			ImagePath: "label.jpg",
		})

	if sc.calls != 1 {
		t.Fatalf("transcriber called %d times, want 1", sc.calls)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
	sent := gen.prompts[0]
	if !strings.Contains(sent, "when should I spray") {
		t.Errorf("prompt missing transcript: %q", sent)
	}
	if strings.Contains(sent, "typed question to be ignored") {
		t.Errorf("prompt should not contain overridden typed text: %q", sent)
	}
}

func TestHandleDoubtTranscriptionFaultWarns(t *testing.T) {
	gen := &fakeGenerator{}
	sc := &fakeTranscriber{err: errors.New("stt down")}

	got := newTestService(&fakeEngine{text: "doc"}, gen, &fakeTranslator{}, &fakeSynthesizer{}, sc).
		HandleDoubt(context.Background(), DoubtRequest{
			Question:  "typed fallback is also ignored",
			AudioPath: "question.wav",
			Language:  "English",
			ImagePath: "doc.jpg",
		})

	if got.Text != WarnNoQuestion {
		t.Errorf("Text = %q, want question warning after failed transcription", got.Text)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestHandleDoubtRerunsOCRAndBuildsContextPrompt(t *testing.T) {
	engine := &fakeEngine{text: "Electricity bill for March"}
	gen := &fakeGenerator{reply: "Pay before the due date."}

	svc := newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscriber{})

	for i := 0; i < 2; i++ {
		svc.HandleDoubt(context.Background(), DoubtRequest{
			Question:  "what is the due date",
			Language:  "English",
			ImagePath: "bill.jpg",
		})
	}

	if engine.calls != 2 {
		t.Errorf("OCR called %d times, want 2 (no caching between doubts)", engine.calls)
	}
	sent := gen.prompts[0]
	if !strings.Contains(sent, "Earlier, you explained this document:") {
		t.Errorf("prompt missing doubt framing: %q", sent)
	}
	if !strings.Contains(sent, "Electricity bill for March") {
		t.Errorf("prompt missing document context: %q", sent)
	}
	if !strings.Contains(sent, "what is the due date") {
		t.Errorf("prompt missing question: %q", sent)
	}
}

func TestHandleDoubtHasNoTimingPrefix(t *testing.T) {
	engine := &fakeEngine{text: "Vaccination schedule"}
	gen := &fakeGenerator{reply: "The next dose is after four weeks."}

	got := newTestService(engine, gen, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscriber{}).
		HandleDoubt(context.Background(), DoubtRequest{
			Question:  "when is the next dose",
			Language:  "English",
			ImagePath: "card.jpg",
		})

	if got.Text != gen.reply {
		t.Errorf("Text = %q, want bare reply %q", got.Text, gen.reply)
	}
}
