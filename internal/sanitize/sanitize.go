// Package sanitize cleans raw OCR output and model-generated text before it
// reaches translation and speech synthesis.
//
// Both sources leak markdown styling (asterisks, bullet glyphs, heading
// markers) that downstream consumers cannot handle, so decoration is stripped
// deterministically while preserving the prose itself. OCR text additionally
// carries engine diagnostics ("tesseract ...", "OCR failed ...") that must
// never be read back to the user; any line containing a known noise phrase is
// dropped entirely.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	leadingDecorRe   = regexp.MustCompile(`^[*:\-_>#\s]+`)
	markdownMarksRe  = regexp.MustCompile(`[*_]+`)
	bulletGlyphsRe   = regexp.MustCompile("[•●■▪◆★☆※§\uFE0E]")
	spacedAsteriskRe = regexp.MustCompile(`\s*\*\s*`)
	asteriskVarsRe   = regexp.MustCompile("[﹡＊✱✳⁎]")
	generatedStarsRe = regexp.MustCompile(`\*{1,3}`)
)

// noisePhrases are matched case-insensitively against each cleaned line.
// A line containing any of them is engine diagnostics, not document content.
var noisePhrases = []string{
	"tesseract",
	"ocr failed",
	"readme",
	"error",
	"path not",
	"not installed",
}

// Extracted cleans raw OCR output line by line, preserving line order.
//
// Each line is trimmed and dropped if empty, then stripped of leading
// markdown decoration, asterisk/underscore runs, bullet glyphs and Unicode
// asterisk variants, and finally dropped if it contains a known noise phrase.
// The result is a fixed point: Extracted(Extracted(s)) == Extracted(s).
func Extracted(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = leadingDecorRe.ReplaceAllString(line, "")
		line = markdownMarksRe.ReplaceAllString(line, "")
		line = bulletGlyphsRe.ReplaceAllString(line, "")
		line = spacedAsteriskRe.ReplaceAllString(line, " ")
		line = asteriskVarsRe.ReplaceAllString(line, "")

		// Glyph removal can expose fresh leading decoration ("● - item"
		// becomes "- item"), so the leading strip runs once more.
		line = leadingDecorRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" || containsNoise(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// Generated strips markdown emphasis and bullet glyphs from model output.
// Unlike Extracted it keeps line structure and never drops content.
func Generated(text string) string {
	text = generatedStarsRe.ReplaceAllString(text, "")
	text = bulletGlyphsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func containsNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
