package app_test

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"swipess_api/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu sync.Mutex

	completeCalls  int
	completedUser  string
	completedDraft domain.Draft
	completedAt    time.Time
	completeErr    error

	skipCalls int
	skipUser  string
	skipStep  domain.Step
	skipErr   error

	locUser string
	locSel  domain.LocationSelection

	notes   []domain.Notification
	noteErr error

	profile  domain.Profile
	packages []domain.TokenPackage
	listErr  error
}

func (f *fakeRepo) CompleteOnboarding(ctx context.Context, userID string, d domain.Draft, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completeCalls++
	f.completedUser = userID
	f.completedDraft = d
	f.completedAt = completedAt
	return nil
}

func (f *fakeRepo) MarkOnboardingSkipped(ctx context.Context, userID string, reached domain.Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipCalls++
	f.skipUser = userID
	f.skipStep = reached
	return f.skipErr
}

func (f *fakeRepo) UpdateProfileLocation(ctx context.Context, userID string, sel domain.LocationSelection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locUser = userID
	f.locSel = sel
	return nil
}

func (f *fakeRepo) InsertNotification(ctx context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noteErr != nil {
		return f.noteErr
	}
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	return f.profile, nil
}

func (f *fakeRepo) ListActivePackages(ctx context.Context) ([]domain.TokenPackage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.packages, nil
}

func (f *fakeRepo) GetPackage(ctx context.Context, id int64) (domain.TokenPackage, error) {
	for _, p := range f.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.TokenPackage{}, domain.ErrNotFound
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.OnboardingSession
	latches  map[string]bool
	putErr   error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]domain.OnboardingSession{}, latches: map[string]bool{}}
}

func (f *fakeSessions) PutSession(ctx context.Context, s domain.OnboardingSession) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, id string) (domain.OnboardingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.OnboardingSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) AcquireCommit(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latches[id] {
		return false, nil
	}
	f.latches[id] = true
	return true, nil
}

func (f *fakeSessions) ReleaseCommit(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.latches, id)
	return nil
}

type fakePickers struct {
	mu      sync.Mutex
	pickers map[string]domain.PickerState
	gens    map[string]int64
}

func newFakePickers() *fakePickers {
	return &fakePickers{pickers: map[string]domain.PickerState{}, gens: map[string]int64{}}
}

func (f *fakePickers) PutPicker(ctx context.Context, p domain.PickerState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pickers[p.ID] = p
	f.gens[p.ID] = p.Generation
	return nil
}

func (f *fakePickers) GetPicker(ctx context.Context, id string) (domain.PickerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pickers[id]
	if !ok {
		return domain.PickerState{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePickers) NextGeneration(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gens[id]++
	return f.gens[id], nil
}

func (f *fakePickers) ApplySelection(ctx context.Context, p domain.PickerState) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[p.ID] > p.Generation {
		return false, nil
	}
	f.pickers[p.ID] = p
	return true, nil
}

type geoCall struct {
	kind  string
	query string
	lat   float64
	lng   float64
}

type fakeGeocoder struct {
	mu      sync.Mutex
	calls   []geoCall
	result  domain.GeoResult
	err     error
	entered chan struct{} // signaled when a call starts, when non-nil
	release chan struct{} // blocks the call until closed, when non-nil
}

func (g *fakeGeocoder) Search(ctx context.Context, query string) (domain.GeoResult, error) {
	g.record(geoCall{kind: "search", query: query})
	return g.result, g.err
}

func (g *fakeGeocoder) Reverse(ctx context.Context, lat, lng float64) (domain.GeoResult, error) {
	g.record(geoCall{kind: "reverse", lat: lat, lng: lng})
	return g.result, g.err
}

func (g *fakeGeocoder) record(c geoCall) {
	g.mu.Lock()
	g.calls = append(g.calls, c)
	entered, release := g.entered, g.release
	g.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
}

func (g *fakeGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeObjectStore struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeObjectStore) Upload(ctx context.Context, ownerID, filename, contentType string, size int64, body io.Reader) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filename)
	f.mu.Unlock()
	if err, ok := f.fail[filename]; ok {
		return "", err
	}
	return "https://cdn.test/" + ownerID + "/" + filename, nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type fakePurchases struct {
	mu      sync.Mutex
	pending map[string]domain.PendingPurchase
	paths   map[string]string
	putErr  error
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{pending: map[string]domain.PendingPurchase{}, paths: map[string]string{}}
}

func (f *fakePurchases) PutPending(ctx context.Context, userID string, m domain.PendingPurchase, returnPath string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[userID] = m
	f.paths[userID] = returnPath
	return nil
}

func (f *fakePurchases) TakePending(ctx context.Context, userID string) (domain.PendingPurchase, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.pending[userID]
	if !ok {
		return domain.PendingPurchase{}, "", domain.ErrNoPending
	}
	path := f.paths[userID]
	delete(f.pending, userID)
	delete(f.paths, userID)
	return m, path, nil
}

type fakeDialogs struct {
	mu        sync.Mutex
	lists     map[string][]domain.DialogMessage
	busy      map[string]bool
	appendErr error
}

func newFakeDialogs() *fakeDialogs {
	return &fakeDialogs{lists: map[string][]domain.DialogMessage{}, busy: map[string]bool{}}
}

func (f *fakeDialogs) AppendMessage(ctx context.Context, sessionID string, m domain.DialogMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[sessionID] = append(f.lists[sessionID], m)
	return nil
}

func (f *fakeDialogs) Transcript(ctx context.Context, sessionID string) ([]domain.DialogMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DialogMessage, len(f.lists[sessionID]))
	copy(out, f.lists[sessionID])
	return out, nil
}

func (f *fakeDialogs) AcquireBusy(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy[sessionID] {
		return false, nil
	}
	f.busy[sessionID] = true
	return true, nil
}

func (f *fakeDialogs) ReleaseBusy(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.busy, sessionID)
	return nil
}

func (f *fakeDialogs) IsBusy(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy[sessionID], nil
}

type fakeAssistant struct {
	mu          sync.Mutex
	calls       int
	lastHistory []domain.DialogMessage
	reply       string
	err         error
}

func (f *fakeAssistant) Reply(ctx context.Context, sessionID string, history []domain.DialogMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// ---- helpers ----

func ptr[T any](v T) *T { return &v }
