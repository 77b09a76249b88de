package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"swipess_api/internal/domain"
	"swipess_api/internal/shared"
)

// OnboardingService drives the linear signup flow. The draft lives in the
// session store only; the profile record is written once, on Complete, or
// reduced to a skip marker. Closing the flow any other way just lets the
// session expire.
type OnboardingService struct {
	sessions domain.SessionStore
	repo     domain.Repository
	store    domain.ObjectStore
	workers  int64
}

func NewOnboardingService(ss domain.SessionStore, repo domain.Repository, store domain.ObjectStore, uploadWorkers int) *OnboardingService {
	if uploadWorkers <= 0 {
		uploadWorkers = 4
	}
	return &OnboardingService{sessions: ss, repo: repo, store: store, workers: int64(uploadWorkers)}
}

func (s *OnboardingService) Start(ctx context.Context, userID string) (domain.OnboardingSession, error) {
	now := time.Now().UTC()
	sess := domain.OnboardingSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Step:      domain.StepWelcome,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return sess, s.sessions.PutSession(ctx, sess)
}

// Get loads a session owned by userID. Sessions of other users are
// indistinguishable from missing ones.
func (s *OnboardingService) Get(ctx context.Context, sessionID, userID string) (domain.OnboardingSession, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.OnboardingSession{}, err
	}
	if sess.UserID != userID {
		return domain.OnboardingSession{}, domain.ErrNotFound
	}
	return sess, nil
}

// Profile returns the committed profile record.
func (s *OnboardingService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// DraftPatch carries step-local edits. Nil fields are left alone.
type DraftPatch struct {
	Name        *string
	Age         *int
	Gender      *string
	Nationality *string
	Languages   *[]string
	HasChildren *bool
	Interests   *[]string
}

func (s *OnboardingService) UpdateDraft(ctx context.Context, sessionID, userID string, patch DraftPatch) (domain.OnboardingSession, error) {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return domain.OnboardingSession{}, err
	}
	if err := applyPatch(&sess.Draft, patch); err != nil {
		return sess, err
	}
	sess.UpdatedAt = time.Now().UTC()
	return sess, s.sessions.PutSession(ctx, sess)
}

func applyPatch(d *domain.Draft, p DraftPatch) error {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Age != nil {
		d.Age = p.Age
	}
	if p.Gender != nil {
		g := domain.Gender(*p.Gender)
		if !g.Valid() {
			return &domain.ValidationError{Field: "gender", Reason: "unknown gender"}
		}
		d.Gender = g
	}
	if p.Nationality != nil {
		if !shared.ValidNationality(*p.Nationality) {
			return &domain.ValidationError{Field: "nationality", Reason: "unknown nationality"}
		}
		d.Nationality = *p.Nationality
	}
	if p.Languages != nil {
		langs := dedupe(*p.Languages)
		if len(langs) > domain.MaxLanguages {
			return &domain.ValidationError{Field: "languages", Reason: "too many languages"}
		}
		for _, l := range langs {
			if !shared.ValidLanguage(l) {
				return &domain.ValidationError{Field: "languages", Reason: "unknown language: " + l}
			}
		}
		d.Languages = langs
	}
	if p.HasChildren != nil {
		d.HasChildren = *p.HasChildren
	}
	if p.Interests != nil {
		ints := dedupe(*p.Interests)
		if len(ints) > domain.MaxInterests {
			return &domain.ValidationError{Field: "interests", Reason: "too many interests"}
		}
		for _, i := range ints {
			if !shared.ValidInterest(i) {
				return &domain.ValidationError{Field: "interests", Reason: "unknown interest: " + i}
			}
		}
		d.Interests = ints
	}
	return nil
}

// dedupe keeps first occurrences, preserving order. Picks behave as sets.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// PhotoUpload is one file from a multipart photos request.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachPhotos uploads the batch concurrently and appends the successful
// URLs to the draft in input order. Failures are reported per photo and
// never touch the draft.
func (s *OnboardingService) AttachPhotos(ctx context.Context, sessionID, userID string, photos []PhotoUpload) ([]domain.UploadResult, domain.OnboardingSession, error) {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, domain.OnboardingSession{}, err
	}

	results := make([]domain.UploadResult, len(photos))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i, ph := range photos {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = domain.UploadResult{Filename: ph.Filename, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, ph PhotoUpload) {
			defer wg.Done()
			defer sem.Release(1)

			url, err := s.store.Upload(ctx, userID, ph.Filename, ph.ContentType, ph.Size, ph.Body)
			results[i] = domain.UploadResult{Filename: ph.Filename, URL: url, Err: err}
		}(i, ph)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err == nil {
			sess.Draft.ProfileImages = append(sess.Draft.ProfileImages, r.URL)
		}
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.sessions.PutSession(ctx, sess); err != nil {
		return results, sess, err
	}
	return results, sess, nil
}

// Advance moves forward iff the current step's gate passes. On a gate
// failure the step is unchanged and the validation reason is returned.
func (s *OnboardingService) Advance(ctx context.Context, sessionID, userID string) (domain.OnboardingSession, error) {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return domain.OnboardingSession{}, err
	}
	if err := domain.Gate(sess.Step, sess.Draft); err != nil {
		return sess, err
	}
	next, err := domain.Next(sess.Step, domain.ActionAdvance)
	if err != nil {
		return sess, err
	}
	sess.Step = next
	sess.UpdatedAt = time.Now().UTC()
	return sess, s.sessions.PutSession(ctx, sess)
}

// Retreat always succeeds; at Welcome it is a no-op.
func (s *OnboardingService) Retreat(ctx context.Context, sessionID, userID string) (domain.OnboardingSession, error) {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return domain.OnboardingSession{}, err
	}
	prev, err := domain.Next(sess.Step, domain.ActionRetreat)
	if errors.Is(err, domain.ErrNoTransition) {
		return sess, nil
	}
	if err != nil {
		return sess, err
	}
	sess.Step = prev
	sess.UpdatedAt = time.Now().UTC()
	return sess, s.sessions.PutSession(ctx, sess)
}

// Skip closes the flow unconditionally. The skip marker write is best
// effort; a storage failure is logged and the caller still proceeds.
func (s *OnboardingService) Skip(ctx context.Context, sessionID, userID string) error {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkOnboardingSkipped(ctx, sess.UserID, sess.Step); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("skip marker write failed")
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("session delete failed, will expire")
	}
	return nil
}

// Complete commits the draft. Only legal at the terminal step and with
// every gate passing again; the profile write happens exactly once. On a
// write failure the session survives so the commit can be retried.
func (s *OnboardingService) Complete(ctx context.Context, sessionID, userID string) error {
	sess, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if sess.Step != domain.StepComplete {
		return &domain.ValidationError{Field: "step", Reason: "finish the flow first"}
	}
	for _, st := range []domain.Step{domain.StepPhotos, domain.StepBasicInfo, domain.StepDemographics, domain.StepInterests} {
		if err := domain.Gate(st, sess.Draft); err != nil {
			return err
		}
	}

	ok, err := s.sessions.AcquireCommit(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBusy
	}
	defer func() { _ = s.sessions.ReleaseCommit(ctx, sessionID) }()

	if err := s.repo.CompleteOnboarding(ctx, sess.UserID, sess.Draft, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.repo.InsertNotification(ctx, domain.Notification{
		UserID: sess.UserID,
		Kind:   "onboarding_completed",
		Title:  "Welcome to Swipess!",
		Body:   "Your profile is live. Start swiping!",
	}); err != nil {
		log.Warn().Err(err).Str("user", sess.UserID).Msg("welcome notification failed")
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("session delete failed, will expire")
	}
	return nil
}
