package skills

import "strings"

// skillAliases maps common variant spellings to canonical identifiers.
// Keys and values are both in normalized (lowercase, trimmed) form so the
// map can be consulted after case folding.
var skillAliases = map[string]string{
	"golang":       "go",
	"go lang":      "go",
	"js":           "javascript",
	"ts":           "typescript",
	"py":           "python",
	"cpp":          "c++",
	"c sharp":      "c#",
	"dotnet":       ".net",
	"asp.net":      ".net",
	"objective c":  "objective-c",
	"reactjs":      "react",
	"react.js":     "react",
	"vuejs":        "vue",
	"vue.js":       "vue",
	"angularjs":    "angular",
	"nodejs":       "node.js",
	"node js":      "node.js",
	"html5":        "html",
	"css3":         "css",
	"scss":         "sass",
	"postgres":     "postgresql",
	"mongo":        "mongodb",
	"ml":           "machine learning",
	"ai":           "artificial intelligence",
	"k8s":          "kubernetes",
	"gcloud":       "gcp",
	"google cloud": "gcp",
	"cicd":         "ci/cd",
	"restful":      "rest",
	"rest api":     "rest",
	"rest apis":    "rest",
}

// Normalize canonicalizes a raw skill name: trim, lowercase, collapse
// internal whitespace, then resolve known aliases. It returns the empty
// string for names that are blank after trimming; callers drop those
// entries rather than storing an unusable identifier.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	n = strings.Join(strings.Fields(n), " ")
	if canonical, ok := skillAliases[n]; ok {
		return canonical
	}
	return n
}

// legacyDelimiters are the separators accepted in flat skills_text fields.
func legacyDelimiters(r rune) bool {
	switch r {
	case ',', ';', '\n', '|':
		return true
	}
	return false
}

// ParseLegacy splits a delimited skills string from an older catalog row
// into a SkillSet. Commas, semicolons, pipes and newlines all delimit;
// blank segments are dropped.
func ParseLegacy(text string) SkillSet {
	return NewSet(strings.FieldsFunc(text, legacyDelimiters)...)
}
