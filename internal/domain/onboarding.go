package domain

import (
	"strings"
	"time"
)

// Step is the onboarding flow position. The flow is linear; every legal
// move is listed in the transition table and anything else is rejected.
type Step int

const (
	StepWelcome Step = iota
	StepPhotos
	StepBasicInfo
	StepDemographics
	StepInterests
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepPhotos:
		return "photos"
	case StepBasicInfo:
		return "basic_info"
	case StepDemographics:
		return "demographics"
	case StepInterests:
		return "interests"
	case StepComplete:
		return "complete"
	}
	return "unknown"
}

// ParseStep maps a stored step name back to its Step.
func ParseStep(s string) (Step, bool) {
	for st := StepWelcome; st <= StepComplete; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StepWelcome, false
}

type Action int

const (
	ActionAdvance Action = iota
	ActionRetreat
)

var transitions = map[Step]map[Action]Step{
	StepWelcome:      {ActionAdvance: StepPhotos},
	StepPhotos:       {ActionAdvance: StepBasicInfo, ActionRetreat: StepWelcome},
	StepBasicInfo:    {ActionAdvance: StepDemographics, ActionRetreat: StepPhotos},
	StepDemographics: {ActionAdvance: StepInterests, ActionRetreat: StepBasicInfo},
	StepInterests:    {ActionAdvance: StepComplete, ActionRetreat: StepDemographics},
	StepComplete:     {ActionRetreat: StepInterests},
}

// Next resolves one move in the flow. Pairs absent from the table
// (retreating from welcome, advancing past complete) return ErrNoTransition.
func Next(from Step, a Action) (Step, error) {
	to, ok := transitions[from][a]
	if !ok {
		return from, ErrNoTransition
	}
	return to, nil
}

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non-binary"
	GenderNotSaid   Gender = "prefer-not-to-say"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary, GenderNotSaid:
		return true
	}
	return false
}

// Draft field limits.
const (
	MinPhotos    = 1
	MaxLanguages = 5
	MinInterests = 3
	MaxInterests = 6
)

// Draft accumulates onboarding answers. It lives in the session store only;
// nothing reaches the profile record before Complete (or the skip marker).
type Draft struct {
	ProfileImages []string
	Name          string
	Age           *int
	Gender        Gender // empty until chosen
	Nationality   string
	Languages     []string
	HasChildren   bool
	Interests     []string
}

// Gate reports why a draft may not leave the given step, nil when it may.
// Welcome gates nothing and Complete is terminal, so both pass.
func Gate(step Step, d Draft) error {
	switch step {
	case StepPhotos:
		if len(d.ProfileImages) < MinPhotos {
			return &ValidationError{Field: "profile_images", Reason: "add at least one photo"}
		}
	case StepBasicInfo:
		if strings.TrimSpace(d.Name) == "" {
			return &ValidationError{Field: "name", Reason: "name is required"}
		}
		if d.Age == nil {
			return &ValidationError{Field: "age", Reason: "age is required"}
		}
		if !d.Gender.Valid() {
			return &ValidationError{Field: "gender", Reason: "select a gender"}
		}
	case StepDemographics:
		if d.Nationality == "" {
			return &ValidationError{Field: "nationality", Reason: "select a nationality"}
		}
		if len(d.Languages) == 0 {
			return &ValidationError{Field: "languages", Reason: "select at least one language"}
		}
		if len(d.Languages) > MaxLanguages {
			return &ValidationError{Field: "languages", Reason: "too many languages"}
		}
	case StepInterests:
		if len(d.Interests) < MinInterests {
			return &ValidationError{Field: "interests", Reason: "pick at least three interests"}
		}
		if len(d.Interests) > MaxInterests {
			return &ValidationError{Field: "interests", Reason: "too many interests"}
		}
	}
	return nil
}

func CanProceed(step Step, d Draft) bool { return Gate(step, d) == nil }

type OnboardingSession struct {
	ID        string
	UserID    string
	Step      Step
	Draft     Draft
	CreatedAt time.Time
	UpdatedAt time.Time
}
