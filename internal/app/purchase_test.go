package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"swipess_api/internal/app"
	"swipess_api/internal/domain"
)

func newPurchase(repo *fakeRepo, pending *fakePurchases) *app.PurchaseService {
	pkgs := app.NewPackageService(repo, &fakeCache{}, time.Minute)
	return app.NewPurchaseService(pkgs, pending, repo, "https://pay.test/checkout")
}

func TestPurchase_BeginWritesMarkerBeforeRedirect(t *testing.T) {
	repo := &fakeRepo{packages: twoPackages()}
	pending := newFakePurchases()
	svc := newPurchase(repo, pending)

	url, err := svc.Begin(context.Background(), "user-7", 2, "/store")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if url != "https://pay.test/checkout?package=2&user=user-7" {
		t.Fatalf("redirect = %q", url)
	}
	m, ok := pending.pending["user-7"]
	if !ok || m.PackageID != 2 || m.Tokens != 150 {
		t.Fatalf("pending marker = %+v, ok = %v", m, ok)
	}
	if pending.paths["user-7"] != "/store" {
		t.Fatalf("return path = %q", pending.paths["user-7"])
	}
	if len(repo.notes) != 1 || repo.notes[0].Kind != "purchase_started" {
		t.Fatalf("notifications = %+v", repo.notes)
	}
}

func TestPurchase_BeginFailsClosedWhenMarkerWriteFails(t *testing.T) {
	repo := &fakeRepo{packages: twoPackages()}
	pending := newFakePurchases()
	pending.putErr = errors.New("redis down")
	svc := newPurchase(repo, pending)

	url, err := svc.Begin(context.Background(), "user-7", 2, "/store")
	if err == nil {
		t.Fatal("expected error")
	}
	if url != "" {
		t.Fatalf("got a redirect %q without a marker", url)
	}
	if len(repo.notes) != 0 {
		t.Fatalf("notifications = %+v, want none", repo.notes)
	}
}

func TestPurchase_BeginValidates(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	expired := domain.TokenPackage{ID: 3, Name: "Old", Tokens: 10, Active: true, ValidUntil: &past}
	repo := &fakeRepo{packages: append(twoPackages(), expired)}
	svc := newPurchase(repo, newFakePurchases())
	ctx := context.Background()

	if _, err := svc.Begin(ctx, "user-7", 2, "https://evil.test/"); !domain.IsValidation(err) {
		t.Fatalf("absolute return path: err = %v, want validation", err)
	}
	if _, err := svc.Begin(ctx, "user-7", 99, "/store"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown package: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Begin(ctx, "user-7", 3, "/store"); !domain.IsValidation(err) {
		t.Fatalf("expired package: err = %v, want validation", err)
	}
}

func TestPurchase_BeginSurvivesNotificationFailure(t *testing.T) {
	repo := &fakeRepo{packages: twoPackages(), noteErr: errors.New("queue full")}
	svc := newPurchase(repo, newFakePurchases())

	url, err := svc.Begin(context.Background(), "user-7", 1, "/store")
	if err != nil || url == "" {
		t.Fatalf("begin: %q, %v", url, err)
	}
}

func TestPurchase_ReturnReadsAndClears(t *testing.T) {
	repo := &fakeRepo{packages: twoPackages()}
	pending := newFakePurchases()
	svc := newPurchase(repo, pending)
	ctx := context.Background()

	if _, err := svc.Begin(ctx, "user-7", 1, "/store"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	m, path, err := svc.CompleteReturn(ctx, "user-7")
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if m.PackageID != 1 || path != "/store" {
		t.Fatalf("returned marker = %+v, path = %q", m, path)
	}
	// a refresh after returning finds nothing
	if _, _, err := svc.CompleteReturn(ctx, "user-7"); !errors.Is(err, domain.ErrNoPending) {
		t.Fatalf("second return: err = %v, want ErrNoPending", err)
	}
}
