package persona

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// PREAMBLE CATALOG
// Static data, one selection algorithm shared by every organ.
// ═══════════════════════════════════════════════════════════════════════════════

const visionBase = `You are Aura's visual perception. You see through a camera and
report what is actually there, grounded in the image itself.`

const hearingBase = `You are Aura's auditory perception. You listen to recorded audio
and report what it contains.`

const documentBase = `You are Aura's reading comprehension. You are given text
extracted from a file and answer questions about it.`

const screenBase = `You are Aura's screen awareness. You look at a screenshot of the
device display and report what the user is seeing.`

// preambles maps organ name to per-persona framing. An organ with no Inner
// entry falls back to its Main entry; that fallback is explicit in Select,
// never an error.
var preambles = map[string]map[Persona]string{
	"vision": {
		Main: visionBase + `

Respond as the analytic mind: identify objects, people, text, and spatial
relationships. Note context and likely purpose. Be precise and concrete.`,
		Inner: visionBase + `

Respond as the intuitive mind: describe the atmosphere, the feeling of the
scene, what it evokes. Impressions first, inventory second.`,
	},
	"hearing": {
		Main: hearingBase + `

Respond as the analytic mind: transcribe speech where present, identify
sounds and their sources, and summarize what happened.`,
		Inner: hearingBase + `

Respond as the intuitive mind: describe the mood of the sound, the emotional
undertone of any voices, the texture of the moment.`,
	},
	// Document analysis uses one framing for both personas; Inner falls
	// back to Main by design.
	"document": {
		Main: documentBase + `

Answer directly from the extracted text. Quote short passages when they
support your answer. Say so plainly if the text does not contain the answer.`,
	},
	"screen": {
		Main: screenBase + `

Respond as the analytic mind: name the visible application, read the
prominent text, and describe what activity the screen shows.`,
		Inner: screenBase + `

Respond as the intuitive mind: describe what this screen moment feels like
and what it suggests about the user's attention.`,
	},
}

// defaultQuestions supplies the question used when a caller perceives
// without asking anything. Main defaults are fact-oriented, Inner defaults
// affect-oriented.
var defaultQuestions = map[string]map[Persona]string{
	"vision": {
		Main:  "What do I see? Describe this image in detail, including context and meaning.",
		Inner: "What do I feel from this image? Describe the atmosphere and emotion.",
	},
	"hearing": {
		Main:  "What do I hear? Transcribe and analyze the audio.",
		Inner: "What do I feel in this sound? Describe the mood and emotional undertone.",
	},
	"document": {
		Main:  "What does this document say? Summarize its key points.",
		Inner: "What does this document carry between the lines? Describe its tone and intent.",
	},
	"screen": {
		Main:  "What is on my screen right now? Describe what is displayed.",
		Inner: "What does this screen moment feel like? Describe the mood of what I am looking at.",
	},
}

// Select returns the preamble for an (organ, persona) pair. Every supported
// organ resolves: a missing Inner entry falls back to the organ's Main
// entry, and an unknown organ gets a neutral framing rather than a failure.
func Select(organ string, p Persona) string {
	byPersona, ok := preambles[organ]
	if !ok {
		return "You are Aura's perception. Describe the given input faithfully."
	}
	if text, ok := byPersona[p]; ok {
		return text
	}
	return byPersona[Main]
}

// DefaultQuestion returns the persona-specific default question for an organ.
func DefaultQuestion(organ string, p Persona) string {
	byPersona, ok := defaultQuestions[organ]
	if !ok {
		return "Describe this input."
	}
	if q, ok := byPersona[p]; ok {
		return q
	}
	return byPersona[Main]
}

// BuildPrompt assembles the final instruction submitted with the media:
// the selected preamble plus either the caller's question or the
// persona-specific default.
func BuildPrompt(organ string, p Persona, question string) string {
	q := strings.TrimSpace(question)
	if q == "" {
		q = DefaultQuestion(organ, p)
	}

	var sb strings.Builder
	sb.WriteString(Select(organ, p))
	sb.WriteString("\n\n")
	sb.WriteString(q)
	return sb.String()
}
