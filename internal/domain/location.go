package domain

type LocationType string

const (
	LocationHome     LocationType = "home"
	LocationCurrent  LocationType = "current"
	LocationProperty LocationType = "property"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationHome, LocationCurrent, LocationProperty:
		return true
	}
	return false
}

// LocationSelection is a resolved place. Lat/Lng are always set together.
// Address is set whenever coordinates are, except after a failed reverse
// geocode, where coordinates survive with an empty address.
type LocationSelection struct {
	Lat          float64
	Lng          float64
	Address      string
	City         *string
	Country      *string
	Neighborhood *string
	Region       *string
	Type         LocationType
}

// PickerState is one location-picking session. Generation is a claim
// counter: every resolving call claims the next value before its remote
// work, and only the newest claim may write Current.
type PickerState struct {
	ID         string
	Type       LocationType
	Generation int64
	Current    *LocationSelection
}

// DeviceFix is a platform geolocation result reported by the client.
type DeviceFix struct {
	Lat       float64
	Lng       float64
	AccuracyM *float64
}

// DeviceError mirrors the platform geolocation failure codes.
type DeviceError string

const (
	DevicePermissionDenied    DeviceError = "permission_denied"
	DevicePositionUnavailable DeviceError = "position_unavailable"
	DeviceTimeout             DeviceError = "timeout"
)

func (e DeviceError) Valid() bool {
	switch e {
	case DevicePermissionDenied, DevicePositionUnavailable, DeviceTimeout:
		return true
	}
	return false
}
