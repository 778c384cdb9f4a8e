// Package prompt builds the instructions sent to the generation model.
//
// There are exactly two prompt kinds: the initial document explanation and
// the follow-up question over the same document. Each is assembled from named
// slots (audience instruction, extracted text, intent suffix, question) so
// prompt construction stays testable independent of the generation client.
package prompt

import "strings"

// Profile describes the audience framing for an explanation.
type Profile string

const (
	ProfileWoman   Profile = "Woman"
	ProfileFarmer  Profile = "Farmer"
	ProfileElderly Profile = "Elderly"
	ProfileOther   Profile = "Other"
)

// profileInstructions maps each known profile to its instruction sentence.
var profileInstructions = map[Profile]string{
	ProfileWoman:   "Explain in very simple language for a rural woman.",
	ProfileFarmer:  "Explain for a rural woman who is a farmer.",
	ProfileElderly: "Explain slowly and clearly for an elderly rural woman.",
	ProfileOther:   "Explain simply for someone unfamiliar with formal documents.",
}

const defaultInstruction = "Explain in simple language."

// Instruction returns the audience instruction for a profile, falling back
// to a generic instruction for unrecognized values.
func Instruction(p Profile) string {
	if instruction, ok := profileInstructions[p]; ok {
		return instruction
	}
	return defaultInstruction
}

// safetyKeywords select the safety suffix when any of them occurs in the
// extracted text. Matching is by substring, not word boundary, so incidental
// occurrences ("chemical engineering") also trigger it. That matches the
// product behavior: over-warning is preferred over missing a dosage label.
var safetyKeywords = []string{
	"medicine", "pesticide", "tablet", "spray", "dosage", "chemical", "mg", "ml",
}

const (
	safetySuffix = "Please explain what the medicine, pesticide, or chemical is for, " +
		"how to use it, and warn of any safety risks."
	generalSuffix = "Please explain what this document is about, and help the user " +
		"understand the key information clearly."
)

// ClassifySuffix inspects cleaned document text and returns the instruction
// suffix to append: the safety explanation when the text mentions medicines,
// pesticides or chemicals, the general explanation otherwise.
func ClassifySuffix(cleaned string) string {
	lower := strings.ToLower(cleaned)
	for _, keyword := range safetyKeywords {
		if strings.Contains(lower, keyword) {
			return safetySuffix
		}
	}
	return generalSuffix
}

// BuildExplain composes the initial explanation prompt from the audience
// instruction, the extracted document text and the classified suffix.
func BuildExplain(profile Profile, cleaned string) string {
	return Instruction(profile) + "\n\n" +
		"The following text was extracted from a document:\n\n" +
		cleaned + "\n\n" +
		ClassifySuffix(cleaned)
}

// BuildDoubt composes the follow-up prompt from the re-extracted document
// context and the user's question.
func BuildDoubt(context, question string) string {
	return "Earlier, you explained this document:\n\n" +
		context + "\n\n" +
		"The user has a follow-up question:\n\n" +
		question + "\n\n" +
		"Answer clearly in simple English suitable for a rural audience."
}
