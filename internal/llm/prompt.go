package llm

import (
	"fmt"
	"strings"
)

// EmptyIdeas is used when a model returns no content at all
const EmptyIdeas = `{"apps":[]}`

// BuildIdeaPrompt creates the prompt asking for count app concepts
func BuildIdeaPrompt(count int) string {
	return fmt.Sprintf(`Generate %d random, fun, and quirky mobile app concepts. Return ONLY valid JSON with an "apps" array containing %d items. Each item must have:
- "name" (short app name, 1-3 words)
- "description" (brief description, 10-20 words)
- "imagePrompt" (detailed Flux prompt for a colorful, vibrant, glossy iOS 6 skeuomorphic app icon with depth, shadows, highlights, and rich textures)

Be creative! Examples: productivity apps, games, utilities, social apps, health apps, entertainment.

IMPORTANT: Return ONLY valid JSON. Escape all quotes in strings properly. No markdown, no code blocks.`, count, count)
}

// CleanJSON strips markdown code fences a model may wrap around JSON output
func CleanJSON(content string) string {
	clean := strings.TrimSpace(content)

	switch {
	case strings.HasPrefix(clean, "```json"):
		clean = stripMarker(clean, "```json")
		clean = strings.TrimSuffix(strings.TrimRight(clean, "\n"), "```")
	case strings.HasPrefix(clean, "```"):
		clean = stripMarker(clean, "```")
	}

	return strings.TrimSpace(clean)
}

// stripMarker removes every occurrence of marker together with one newline after it
func stripMarker(s, marker string) string {
	s = strings.ReplaceAll(s, marker+"\n", "")
	return strings.ReplaceAll(s, marker, "")
}
