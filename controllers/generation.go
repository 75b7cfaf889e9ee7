package controllers

import "strings"

// generationInstructions is appended verbatim to every user prompt before it
// reaches the text provider.
const generationInstructions = `

CRITICAL INSTRUCTIONS:
- Focus ONLY on the specific topic mentioned in the title
- Use the subtitle and category to guide content direction
- Create practical, actionable content that readers can apply
- If the topic naturally requires stories or examples, include them
- Avoid generic phrases like "join our community", "subscribe to our newsletter", or promotional content
- Make content genuinely helpful and informative
- Use engaging writing style that keeps readers interested
- Structure content logically with clear sections
- Ensure every paragraph provides value to the reader

Format your response with clean HTML tags:
- Use <h2> for main section headings
- Use <h3> for subsection headings
- Use <p> for paragraphs
- Use <ul> and <li> for bullet points
- Use <strong> for emphasis
- Ensure proper spacing and structure

Generate focused, valuable content that directly addresses the blog title and provides real insights.`

// Markers that indicate the model echoed part of the instructions back.
// Output is truncated at the first occurrence of any of them, which also
// truncates legitimate content that happens to contain a marker — the
// cleanup is heuristic pattern matching, not a parser.
var instructionEchoMarkers = []string{
	"Requirements:",
	"CRITICAL INSTRUCTIONS:",
	"Format your response",
	"Generate focused",
}

// Block tags the generated article is expected to start with.
var leadingBlockTags = []string{"<h", "<p", "<ul"}

// cleanGeneratedContent applies the best-effort cleanup pass to raw model
// output: truncate at instruction echoes, drop any preamble before the
// first HTML block tag, and strip trailing quote characters.
func cleanGeneratedContent(content string) string {
	for _, marker := range instructionEchoMarkers {
		if idx := strings.Index(content, marker); idx >= 0 {
			content = content[:idx]
		}
	}

	if idx := firstBlockTagIndex(content); idx > 0 {
		content = content[idx:]
	} else if idx < 0 {
		// No block tag at all: drop everything before the first tag-like
		// character, or the whole output if there is none.
		if j := strings.IndexByte(content, '<'); j >= 0 {
			content = content[j:]
		} else {
			content = ""
		}
	}

	content = strings.TrimRight(content, "'\"` \t\r\n")
	return strings.TrimSpace(content)
}

func firstBlockTagIndex(s string) int {
	first := -1
	for _, tag := range leadingBlockTags {
		if idx := strings.Index(s, tag); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	return first
}
