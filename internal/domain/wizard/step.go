package wizard

import (
	"fmt"

	"github.com/khoahotran/portfolio-builder/internal/domain/draft"
)

type Step int

const (
	StepPersonal Step = iota + 1
	StepExperience
	StepSkills
	StepProjects
)

const (
	FirstStep = StepPersonal
	LastStep  = StepProjects
)

type StepInfo struct {
	Step        Step   `json:"step"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var steps = []StepInfo{
	{Step: StepPersonal, Name: "Personal", Description: "Basic info"},
	{Step: StepExperience, Name: "Experience", Description: "Work history"},
	{Step: StepSkills, Name: "Skills", Description: "Your expertise"},
	{Step: StepProjects, Name: "Projects", Description: "Your work"},
}

// Steps returns the ordered step metadata.
func Steps() []StepInfo {
	return append([]StepInfo{}, steps...)
}

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return steps[s-1].Name
}

// Gate reports whether d satisfies the requirements for leaving step s.
// Experience and projects are optional sections.
func (s Step) Gate(d *draft.Draft) bool {
	switch s {
	case StepPersonal:
		return d.PersonalInfo.HasRequired()
	case StepExperience:
		return true
	case StepSkills:
		return len(d.Skills) > 0
	case StepProjects:
		return true
	default:
		return false
	}
}
