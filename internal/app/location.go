package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"swipess_api/internal/domain"
	"swipess_api/internal/shared"
)

// LocationService runs picker sessions. Every resolving operation claims a
// generation before its remote work and applies its result through the
// store's compare-and-set, so a slow older resolution can never overwrite
// a newer one.
type LocationService struct {
	pickers domain.PickerStore
	geo     domain.Geocoder
	repo    domain.Repository
}

func NewLocationService(pickers domain.PickerStore, geo domain.Geocoder, repo domain.Repository) *LocationService {
	return &LocationService{pickers: pickers, geo: geo, repo: repo}
}

// Resolution is the outcome of one resolving operation. Applied is false
// when a newer claim won while this one was in flight.
type Resolution struct {
	Selection  *domain.LocationSelection
	Generation int64
	Applied    bool
}

func (s *LocationService) Open(ctx context.Context, locType string) (domain.PickerState, error) {
	t := domain.LocationType(locType)
	if !t.Valid() {
		return domain.PickerState{}, &domain.ValidationError{Field: "location_type", Reason: "unknown location type"}
	}
	p := domain.PickerState{ID: uuid.NewString(), Type: t}
	return p, s.pickers.PutPicker(ctx, p)
}

func (s *LocationService) Picker(ctx context.Context, id string) (domain.PickerState, error) {
	return s.pickers.GetPicker(ctx, id)
}

// SearchText resolves a typed address. A blank query is rejected before
// the geocoder is involved; a failed search leaves the current selection
// untouched.
func (s *LocationService) SearchText(ctx context.Context, pickerID, query string) (Resolution, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Resolution{}, &domain.ValidationError{Field: "query", Reason: "please enter an address"}
	}
	p, err := s.pickers.GetPicker(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	gen, err := s.pickers.NextGeneration(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	res, err := s.geo.Search(ctx, q)
	if err != nil {
		return Resolution{Generation: gen}, err
	}
	sel := selectionFrom(res, p.Type)
	return s.apply(ctx, p, gen, sel)
}

// SelectCatalog serves the bundled city list: synchronous and offline, it
// cannot fail for a known slug.
func (s *LocationService) SelectCatalog(ctx context.Context, pickerID, slug string) (Resolution, error) {
	city, ok := shared.CityBySlug(slug)
	if !ok {
		return Resolution{}, &domain.ValidationError{Field: "slug", Reason: "unknown city"}
	}
	p, err := s.pickers.GetPicker(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	// still claims a generation so a slow remote resolution started earlier
	// cannot land on top of this pick
	gen, err := s.pickers.NextGeneration(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	name, country := city.Name, city.Country
	sel := domain.LocationSelection{
		Lat: city.Lat, Lng: city.Lng,
		Address: city.Address,
		City:    &name, Country: &country,
		Type: p.Type,
	}
	return s.apply(ctx, p, gen, sel)
}

// ResolveCoordinates is the map tap/drag path. When the reverse geocode
// fails the pin is kept with an empty address rather than dropped.
func (s *LocationService) ResolveCoordinates(ctx context.Context, pickerID string, lat, lng float64) (Resolution, error) {
	p, err := s.pickers.GetPicker(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	gen, err := s.pickers.NextGeneration(ctx, pickerID)
	if err != nil {
		return Resolution{}, err
	}
	sel := domain.LocationSelection{Lat: lat, Lng: lng, Type: p.Type}
	res, rerr := s.geo.Reverse(ctx, lat, lng)
	if rerr != nil {
		log.Warn().Err(rerr).Str("picker", pickerID).Msg("reverse geocode failed, keeping pin")
	} else {
		sel = selectionFrom(res, p.Type)
		// keep the exact tapped point, not the geocoder's snapped one
		sel.Lat, sel.Lng = lat, lng
	}
	return s.apply(ctx, p, gen, sel)
}

// UseDevice normalizes the platform geolocation outcome reported by the
// client. A failure code maps to its own condition; a fix resolves like a
// map tap.
func (s *LocationService) UseDevice(ctx context.Context, pickerID string, fix *domain.DeviceFix, devErr domain.DeviceError) (Resolution, error) {
	if devErr != "" {
		switch devErr {
		case domain.DevicePermissionDenied:
			return Resolution{}, domain.ErrDevicePermission
		case domain.DeviceTimeout:
			return Resolution{}, domain.ErrDeviceTimeout
		case domain.DevicePositionUnavailable:
			return Resolution{}, domain.ErrDeviceUnavailable
		default:
			return Resolution{}, &domain.ValidationError{Field: "error_code", Reason: "unknown device error"}
		}
	}
	if fix == nil {
		return Resolution{}, &domain.ValidationError{Field: "fix", Reason: "a fix or an error code is required"}
	}
	return s.ResolveCoordinates(ctx, pickerID, fix.Lat, fix.Lng)
}

// ApplyToProfile writes a finished selection onto the caller's profile.
func (s *LocationService) ApplyToProfile(ctx context.Context, userID string, sel domain.LocationSelection) error {
	if !sel.Type.Valid() {
		return &domain.ValidationError{Field: "location_type", Reason: "unknown location type"}
	}
	return s.repo.UpdateProfileLocation(ctx, userID, sel)
}

func (s *LocationService) apply(ctx context.Context, p domain.PickerState, gen int64, sel domain.LocationSelection) (Resolution, error) {
	p.Generation = gen
	p.Current = &sel
	applied, err := s.pickers.ApplySelection(ctx, p)
	if err != nil {
		return Resolution{Generation: gen}, err
	}
	return Resolution{Selection: &sel, Generation: gen, Applied: applied}, nil
}

func selectionFrom(r domain.GeoResult, t domain.LocationType) domain.LocationSelection {
	return domain.LocationSelection{
		Lat: r.Lat, Lng: r.Lng,
		Address:      r.Address,
		City:         r.City,
		Country:      r.Country,
		Neighborhood: r.Neighborhood,
		Region:       r.Region,
		Type:         t,
	}
}
