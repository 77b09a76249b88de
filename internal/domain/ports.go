package domain

import (
	"context"
	"io"
	"time"
)

type Repository interface {
	// Write paths
	CompleteOnboarding(ctx context.Context, userID string, d Draft, completedAt time.Time) error
	MarkOnboardingSkipped(ctx context.Context, userID string, reached Step) error
	UpdateProfileLocation(ctx context.Context, userID string, sel LocationSelection) error
	InsertNotification(ctx context.Context, n Notification) error

	// Read paths
	GetProfile(ctx context.Context, userID string) (Profile, error)
	ListActivePackages(ctx context.Context) ([]TokenPackage, error)
	GetPackage(ctx context.Context, id int64) (TokenPackage, error)
}

type Geocoder interface {
	Search(ctx context.Context, query string) (GeoResult, error)
	Reverse(ctx context.Context, lat, lng float64) (GeoResult, error)
}

type ObjectStore interface {
	// Upload stores body under the owner's namespace and returns a public URL.
	Upload(ctx context.Context, ownerID, filename, contentType string, size int64, body io.Reader) (string, error)
}

type AssistantClient interface {
	// Reply runs one dialog turn; history ends with the new user message.
	Reply(ctx context.Context, sessionID string, history []DialogMessage) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type SessionStore interface {
	PutSession(ctx context.Context, s OnboardingSession) error
	GetSession(ctx context.Context, id string) (OnboardingSession, error)
	DeleteSession(ctx context.Context, id string) error

	// Commit latch: one Complete in flight per session.
	AcquireCommit(ctx context.Context, id string) (bool, error)
	ReleaseCommit(ctx context.Context, id string) error
}

type PickerStore interface {
	PutPicker(ctx context.Context, p PickerState) error
	GetPicker(ctx context.Context, id string) (PickerState, error)
	// NextGeneration claims the next resolution slot for the picker.
	NextGeneration(ctx context.Context, id string) (int64, error)
	// ApplySelection writes p.Current iff p.Generation is still the newest
	// claim. Reports whether the write happened.
	ApplySelection(ctx context.Context, p PickerState) (bool, error)
}

type PurchaseStore interface {
	PutPending(ctx context.Context, userID string, m PendingPurchase, returnPath string) error
	// TakePending reads and clears the marker and return path in one go.
	// ErrNoPending when nothing is stored.
	TakePending(ctx context.Context, userID string) (PendingPurchase, string, error)
}

type DialogStore interface {
	AppendMessage(ctx context.Context, sessionID string, m DialogMessage) error
	Transcript(ctx context.Context, sessionID string) ([]DialogMessage, error)
	AcquireBusy(ctx context.Context, sessionID string) (bool, error)
	ReleaseBusy(ctx context.Context, sessionID string) error
	IsBusy(ctx context.Context, sessionID string) (bool, error)
}

// Read models
type GeoResult struct {
	Lat          float64
	Lng          float64
	Address      string
	City         *string
	Country      *string
	Neighborhood *string
	Region       *string
}

// UploadResult is one file's outcome in a multi-photo upload.
type UploadResult struct {
	Filename string
	URL      string // empty on failure
	Err      error  // nil on success
}
