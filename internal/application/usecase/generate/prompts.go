package generate

import (
	"fmt"
	"strings"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
)

func buildBioPrompt(d draft.Draft) string {
	info := d.PersonalInfo
	var b strings.Builder
	fmt.Fprintf(&b, "Write a first-person professional bio of at most three sentences for %s, a %s.\n", info.FullName, info.Title)
	if info.Location != "" {
		fmt.Fprintf(&b, "Based in: %s\n", info.Location)
	}
	if info.Summary != "" {
		fmt.Fprintf(&b, "Their own summary: %s\n", info.Summary)
	}
	if len(d.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(d.Skills, ", "))
	}
	for _, e := range d.Experiences {
		fmt.Fprintf(&b, "Worked as %s at %s\n", e.Role, e.Company)
	}
	b.WriteString("Do not invent employers, numbers or achievements that are not listed above.")
	return b.String()
}

func buildExperiencePrompt(e draft.Experience) string {
	return fmt.Sprintf(
		"Rewrite this description of a %s role at %s as two or three polished sentences with active verbs. Keep every fact and add none.\n\nDescription:\n%s",
		e.Role, e.Company, e.Description,
	)
}

func buildProjectPrompt(p draft.Project) string {
	var stack string
	if len(p.TechStack) > 0 {
		stack = fmt.Sprintf(" built with %s", strings.Join(p.TechStack, ", "))
	}
	return fmt.Sprintf(
		"Rewrite the description of the project %q%s as two concise sentences that explain what it does and why it matters. Keep every fact and add none.\n\nDescription:\n%s",
		p.Title, stack, p.Description,
	)
}
