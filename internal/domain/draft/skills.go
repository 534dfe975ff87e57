package draft

import "slices"

// SuggestedSkills is the quick-add list offered on the skills step.
var SuggestedSkills = []string{
	"JavaScript",
	"TypeScript",
	"React",
	"Next.js",
	"Node.js",
	"Python",
	"SQL",
	"Git",
	"AWS",
	"Docker",
	"Tailwind CSS",
	"GraphQL",
	"REST APIs",
	"MongoDB",
	"PostgreSQL",
	"Redis",
	"CI/CD",
	"Agile",
	"Figma",
	"UI/UX Design",
}

const maxSuggestions = 12

// Suggestions returns up to 12 suggested skills that are not in current.
func Suggestions(current []string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, s := range SuggestedSkills {
		if len(out) == maxSuggestions {
			break
		}
		if !slices.Contains(current, s) {
			out = append(out, s)
		}
	}
	return out
}

func SkillHint(count int) string {
	switch {
	case count < 5:
		return "Add at least 5 skills for better results"
	case count < 10:
		return "Looking good! Add more for a comprehensive profile"
	default:
		return "Great! You have a solid skill set"
	}
}
