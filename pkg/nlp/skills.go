package nlp

// Только однозначные алиасы; обычные английские слова (go, rest, ts) в
// качестве алиаса не допускаются.
var aliases = map[string][]string{
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"go":         {"golang"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"rest":       {"rest api"},
	"ci cd":      {"cicd"},
	"cicd":       {"ci cd"},
}

// SkillVariants returns the normalized skill plus its known aliases.
func SkillVariants(skill string) []string {
	base := NormalizeText(skill)
	if base == "" {
		return nil
	}
	out := []string{base}
	for _, a := range aliases[base] {
		if a != base {
			out = append(out, a)
		}
	}
	return out
}

// Matcher answers "is this skill mentioned in that text" for one text,
// normalizing the text only once.
type Matcher struct {
	text  string
	cased string
}

func NewMatcher(texts ...string) Matcher {
	var joined string
	for _, t := range texts {
		joined += " " + t
	}
	return Matcher{text: NormalizeText(joined), cased: collapse(joined)}
}

// Mentions reports whether the skill occurs as written (same case, whole
// words) or one of its aliases occurs in any case.
func (m Matcher) Mentions(skill string) bool {
	written := collapse(skill)
	if written == "" {
		return false
	}
	if ContainsPhrase(m.cased, written) {
		return true
	}
	for _, a := range aliases[NormalizeText(skill)] {
		if ContainsPhrase(m.text, a) {
			return true
		}
	}
	return false
}
