package httpserver

import (
	"time"

	"swipess_api/internal/domain"
	"swipess_api/internal/shared"
)

// Wire views. The client contract is snake_case; enums go out as their
// string names, never as ordinals.

type draftView struct {
	ProfileImages []string `json:"profile_images"`
	Name          string   `json:"name,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	Nationality   string   `json:"nationality,omitempty"`
	Languages     []string `json:"languages,omitempty"`
	HasChildren   bool     `json:"has_children"`
	Interests     []string `json:"interests,omitempty"`
}

type sessionView struct {
	ID         string    `json:"id"`
	Step       string    `json:"step"`
	CanProceed bool      `json:"can_proceed"`
	Draft      draftView `json:"draft"`
}

func viewSession(s domain.OnboardingSession) sessionView {
	return sessionView{
		ID:         s.ID,
		Step:       s.Step.String(),
		CanProceed: domain.CanProceed(s.Step, s.Draft),
		Draft: draftView{
			ProfileImages: emptyNotNull(s.Draft.ProfileImages),
			Name:          s.Draft.Name,
			Age:           s.Draft.Age,
			Gender:        string(s.Draft.Gender),
			Nationality:   s.Draft.Nationality,
			Languages:     s.Draft.Languages,
			HasChildren:   s.Draft.HasChildren,
			Interests:     s.Draft.Interests,
		},
	}
}

type selectionView struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Address      string  `json:"address"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
	Neighborhood *string `json:"neighborhood,omitempty"`
	Region       *string `json:"region,omitempty"`
	Type         string  `json:"type"`
}

func viewSelection(sel *domain.LocationSelection) *selectionView {
	if sel == nil {
		return nil
	}
	return &selectionView{
		Lat: sel.Lat, Lng: sel.Lng,
		Address:      sel.Address,
		City:         sel.City,
		Country:      sel.Country,
		Neighborhood: sel.Neighborhood,
		Region:       sel.Region,
		Type:         string(sel.Type),
	}
}

type pickerView struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Generation int64          `json:"generation"`
	Current    *selectionView `json:"current,omitempty"`
}

func viewPicker(p domain.PickerState) pickerView {
	return pickerView{
		ID:         p.ID,
		Type:       string(p.Type),
		Generation: p.Generation,
		Current:    viewSelection(p.Current),
	}
}

// resolutionView reports one resolving call. Applied false means a newer
// selection won while this one was in flight; the client should keep
// whatever GET /pickers/{id} says.
type resolutionView struct {
	Selection  *selectionView `json:"selection,omitempty"`
	Generation int64          `json:"generation"`
	Applied    bool           `json:"applied"`
}

type profileView struct {
	UserID                string         `json:"user_id"`
	Name                  *string        `json:"name,omitempty"`
	Age                   *int           `json:"age,omitempty"`
	Gender                string         `json:"gender,omitempty"`
	Nationality           *string        `json:"nationality,omitempty"`
	Languages             []string       `json:"languages,omitempty"`
	HasChildren           *bool          `json:"has_children,omitempty"`
	Interests             []string       `json:"interests,omitempty"`
	ProfileImages         []string       `json:"profile_images,omitempty"`
	OnboardingCompleted   bool           `json:"onboarding_completed"`
	OnboardingStep        string         `json:"onboarding_step"`
	OnboardingCompletedAt *time.Time     `json:"onboarding_completed_at,omitempty"`
	Location              *selectionView `json:"location,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

func viewProfile(p domain.Profile) profileView {
	out := profileView{
		UserID:                p.UserID,
		Name:                  p.Name,
		Age:                   p.Age,
		Nationality:           p.Nationality,
		Languages:             p.Languages,
		HasChildren:           p.HasChildren,
		Interests:             p.Interests,
		ProfileImages:         p.ProfileImages,
		OnboardingCompleted:   p.OnboardingCompleted,
		OnboardingStep:        p.OnboardingStep.String(),
		OnboardingCompletedAt: p.OnboardingCompletedAt,
		Location:              viewSelection(p.Location),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	if p.Gender != nil {
		out.Gender = string(*p.Gender)
	}
	return out
}

type packageView struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Tokens     int        `json:"tokens"`
	PriceCents int64      `json:"price_cents"`
	Currency   string     `json:"currency"`
	Tier       string     `json:"tier"`
	Features   []string   `json:"features,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

func viewPackage(p domain.TokenPackage) packageView {
	return packageView{
		ID:         p.ID,
		Name:       p.Name,
		Tokens:     p.Tokens,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
		Tier:       string(p.Tier),
		Features:   p.Features,
		ValidUntil: p.ValidUntil,
	}
}

type messageView struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type dialogView struct {
	Messages []messageView `json:"messages"`
	Thinking bool          `json:"thinking"`
}

func viewDialog(msgs []domain.DialogMessage, thinking bool) dialogView {
	out := dialogView{Messages: make([]messageView, 0, len(msgs)), Thinking: thinking}
	for _, m := range msgs {
		out.Messages = append(out.Messages, messageView{Role: string(m.Role), Text: m.Text, At: m.At})
	}
	return out
}

type cityView struct {
	Slug    string  `json:"slug"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type optionView struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type catalogsView struct {
	Cities        []cityView   `json:"cities"`
	Nationalities []optionView `json:"nationalities"`
	Languages     []optionView `json:"languages"`
	Interests     []string     `json:"interests"`
	Genders       []string     `json:"genders"`
}

func viewCatalogs() catalogsView {
	out := catalogsView{
		Interests: shared.Interests,
		Genders: []string{
			string(domain.GenderMale), string(domain.GenderFemale),
			string(domain.GenderNonBinary), string(domain.GenderNotSaid),
		},
	}
	for _, c := range shared.Cities {
		out.Cities = append(out.Cities, cityView{Slug: c.Slug, Name: c.Name, Country: c.Country, Lat: c.Lat, Lng: c.Lng})
	}
	for _, n := range shared.Nationalities {
		out.Nationalities = append(out.Nationalities, optionView{Code: n.Code, Name: n.Name})
	}
	for _, l := range shared.Languages {
		out.Languages = append(out.Languages, optionView{Code: l.Code, Name: l.Name})
	}
	return out
}

// emptyNotNull keeps list fields as [] in JSON rather than null.
func emptyNotNull(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
