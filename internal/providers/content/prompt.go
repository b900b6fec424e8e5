package content

import (
	"fmt"
	"strings"

	"lessonforge/internal/project"
)

var templateInstructions = map[project.TemplateType]string{
	project.TemplateGrammarLesson: "Teach one grammar point step by step. Open with the rule, " +
		"show positive and negative examples, and close with a short practice prompt.",
	project.TemplateNewsBroadcast: "Present the topic as a short news broadcast. Use a neutral " +
		"anchor voice, headline first, then two or three developments, then a sign-off.",
	project.TemplateVocabularyLesson: "Teach the vocabulary set in context. Introduce each term " +
		"with a definition and a natural example sentence before moving on.",
	project.TemplateConversationPractice: "Model a realistic two-person conversation about the " +
		"topic, pausing to highlight useful phrases the learner should reuse.",
}

func buildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an experienced language teacher writing the script for a short educational video. ")
	fmt.Fprintf(&b, "The learner is at CEFR level %s. ", req.Level)
	if req.NativeLanguage != "" {
		fmt.Fprintf(&b, "The learner's native language is %q; use it sparingly for brief clarifications only. ", req.NativeLanguage)
	}
	if instructions, ok := templateInstructions[req.TemplateType]; ok {
		b.WriteString(instructions)
		b.WriteString(" ")
	}
	b.WriteString("Respond with a single JSON object using exactly these keys: " +
		`"objective" (string), "vocabulary" (array of {"term","definition","example"}), ` +
		`"slides" (array of {"title","content"}), "questions" (array of {"prompt","options","answer"}), ` +
		`"key_takeaways" (array of strings), "full_script" (string, the complete narration), ` +
		`"estimated_duration" (integer seconds). No prose outside the JSON.`)
	return b.String()
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Target video length: about %d seconds of narration.\n", req.DurationSeconds)
	if req.ResearchContext != "" {
		b.WriteString("\nBackground material gathered for this topic:\n")
		b.WriteString(req.ResearchContext)
		b.WriteString("\n")
	}
	return b.String()
}
