package skills

import (
	"strings"
	"unicode"
)

// extractStopWords filters common English words that would otherwise
// collide with single-token lexicon entries when scanning posting text.
var extractStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"experience": true, "years": true, "strong": true, "skills": true,
}

// skillLexicon is the single-token vocabulary recognized by
// ExtractFromText, keyed by canonical identifier. Aliases resolve into it
// through Normalize, so "Golang" in a posting lands here as "go".
var skillLexicon = map[string]bool{
	"go": true, "python": true, "java": true, "javascript": true,
	"typescript": true, "c++": true, "c#": true, "rust": true,
	"ruby": true, "php": true, "swift": true, "kotlin": true,
	"scala": true, "sql": true, "nosql": true, "postgresql": true,
	"mysql": true, "sqlite": true, "mongodb": true, "redis": true,
	"elasticsearch": true, "kafka": true, "rabbitmq": true, "grpc": true,
	"graphql": true, "rest": true, "docker": true, "kubernetes": true,
	"terraform": true, "ansible": true, "jenkins": true, "aws": true,
	"azure": true, "gcp": true, "linux": true, "git": true,
	"react": true, "angular": true, "vue": true, "node.js": true,
	"django": true, "flask": true, "fastapi": true, "rails": true,
	"spring": true, "html": true, "css": true, "sass": true,
	"webpack": true, "pandas": true, "numpy": true, "pytorch": true,
	"tensorflow": true, "spark": true, "hadoop": true, "airflow": true,
	"tableau": true, "excel": true, "jira": true, "figma": true,
	"agile": true, "scrum": true, "ci/cd": true, ".net": true,
	"objective-c": true, "selenium": true, "cypress": true,
}

// phraseLexicon lists multi-word skills that tokenization would split.
// Entries are already canonical identifiers and are matched by substring
// scan over the lowercased text.
var phraseLexicon = []string{
	"machine learning",
	"deep learning",
	"data science",
	"data engineering",
	"data analysis",
	"computer vision",
	"natural language processing",
	"artificial intelligence",
	"distributed systems",
	"unit testing",
	"project management",
	"web development",
}

// ExtractFromText scans free-form posting text for known skills and
// returns them as a normalized SkillSet. The tokenizer treats + # . as
// word characters so "c++", "c#" and "node.js" survive intact; tokens
// shorter than three runes are discarded ("c#" excepted) since they are
// dominated by English noise.
func ExtractFromText(text string) SkillSet {
	found := make(SkillSet)
	lowered := strings.ToLower(text)

	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".")
		if w == "" || extractStopWords[w] {
			return
		}
		if len([]rune(w)) < 3 && w != "c#" {
			return
		}
		if key := Normalize(w); skillLexicon[key] {
			found[key] = struct{}{}
		}
	}
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '/' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	for _, phrase := range phraseLexicon {
		if strings.Contains(lowered, phrase) {
			found[phrase] = struct{}{}
		}
	}
	return found
}
