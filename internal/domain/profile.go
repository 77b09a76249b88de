package domain

import "time"

type Profile struct {
	UserID                string
	Name                  *string
	Age                   *int
	Gender                *Gender
	Nationality           *string
	Languages             []string
	HasChildren           *bool
	Interests             []string
	ProfileImages         []string
	OnboardingCompleted   bool
	OnboardingStep        Step
	OnboardingCompletedAt *time.Time
	Location              *LocationSelection
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
