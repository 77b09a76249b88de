package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"swipess_api/internal/domain"
)

// PackageService serves the read-only token packages through a short-TTL
// cache so every view doesn't hit the database.
type PackageService struct {
	repo     domain.Repository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPackageService(r domain.Repository, c domain.Cache, ttl time.Duration) *PackageService {
	return &PackageService{repo: r, cache: c, cacheTTL: ttl}
}

const packagesKey = "pkg:active"

func (s *PackageService) List(ctx context.Context) ([]domain.TokenPackage, error) {
	var out []domain.TokenPackage
	if ok, _ := s.cache.Get(ctx, packagesKey, &out); ok {
		return out, nil
	}
	pkgs, err := s.repo.ListActivePackages(ctx)
	if err != nil {
		return nil, err
	}

	// cache a copy; callers are free to mutate the returned slice
	cp := copyPackages(pkgs)

	// skip caching oversized payloads
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, packagesKey, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func (s *PackageService) Get(ctx context.Context, id int64) (domain.TokenPackage, error) {
	key := fmt.Sprintf("pkg:%d", id)
	var p domain.TokenPackage
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return domain.TokenPackage{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func copyPackages(in []domain.TokenPackage) []domain.TokenPackage {
	if len(in) == 0 {
		return []domain.TokenPackage{}
	}
	out := make([]domain.TokenPackage, len(in))
	copy(out, in)
	return out
}
