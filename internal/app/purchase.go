package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"swipess_api/internal/domain"
)

// PurchaseService records purchase intent. Payment itself happens on the
// provider's page; this side only writes the pending marker and return
// path before the redirect and clears them when the user comes back.
type PurchaseService struct {
	packages     *PackageService
	pending      domain.PurchaseStore
	repo         domain.Repository
	checkoutBase string
}

func NewPurchaseService(pkgs *PackageService, pending domain.PurchaseStore, repo domain.Repository, checkoutBase string) *PurchaseService {
	return &PurchaseService{packages: pkgs, pending: pending, repo: repo, checkoutBase: checkoutBase}
}

// Begin validates the package and writes the round-trip keys. The marker
// write must land before the caller is handed the redirect URL; if it
// fails there is no redirect.
func (s *PurchaseService) Begin(ctx context.Context, userID string, packageID int64, returnPath string) (string, error) {
	if returnPath == "" || !strings.HasPrefix(returnPath, "/") {
		return "", &domain.ValidationError{Field: "return_path", Reason: "must be a relative path"}
	}
	pkg, err := s.packages.Get(ctx, packageID)
	if err != nil {
		return "", err
	}
	if !pkg.AvailableAt(time.Now().UTC()) {
		return "", &domain.ValidationError{Field: "package_id", Reason: "package is not available"}
	}

	m := domain.PendingPurchase{PackageID: pkg.ID, Tokens: pkg.Tokens, CreatedAt: time.Now().UTC()}
	if err := s.pending.PutPending(ctx, userID, m, returnPath); err != nil {
		return "", err
	}

	if err := s.repo.InsertNotification(ctx, domain.Notification{
		UserID: userID,
		Kind:   "purchase_started",
		Title:  "Purchase started",
		Body:   fmt.Sprintf("Your %s package is waiting for payment.", pkg.Name),
	}); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("purchase notification failed")
	}

	return fmt.Sprintf("%s?package=%d&user=%s", s.checkoutBase, pkg.ID, url.QueryEscape(userID)), nil
}

// CompleteReturn consumes the round-trip state: one read clears it, so a
// refresh after returning finds nothing pending.
func (s *PurchaseService) CompleteReturn(ctx context.Context, userID string) (domain.PendingPurchase, string, error) {
	return s.pending.TakePending(ctx, userID)
}
