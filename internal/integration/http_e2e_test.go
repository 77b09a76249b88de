//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"swipess_api/internal/domain"
	"swipess_api/internal/shared"
	mysqlrepo "swipess_api/internal/storage/mysql"
)

// ---------- helpers ----------
func pstr(s string) *string { return &s }
func pint(i int) *int       { return &i }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- tiny HTTP around repo (keeps wiring simple) ----------
type testAPI struct{ repo *mysqlrepo.Repo }

func (a *testAPI) profile(w http.ResponseWriter, r *http.Request) {
	// Expect /v1/profiles/{userID}
	userID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/profiles/"))
	if userID == "" {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}
	p, err := a.repo.GetProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	resp := struct {
		UserID    string  `json:"user_id"`
		Name      *string `json:"name"`
		Step      string  `json:"onboarding_step"`
		Completed bool    `json:"onboarding_completed"`
		City      *string `json:"city"`
	}{
		UserID:    p.UserID,
		Name:      p.Name,
		Step:      p.OnboardingStep.String(),
		Completed: p.OnboardingCompleted,
	}
	if p.Location != nil {
		resp.City = p.Location.City
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *testAPI) packages(w http.ResponseWriter, r *http.Request) {
	list, err := a.repo.ListActivePackages(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	type pkg struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Tokens int    `json:"tokens"`
	}
	out := make([]pkg, 0, len(list))
	for _, p := range list {
		out = append(out, pkg{ID: p.ID, Name: p.Name, Tokens: p.Tokens})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// ---------- the test ----------
func TestHTTP_EndToEnd_CommittedProfile(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=swipess",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "swipess")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Apply your real migrations
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Seed a committed profile the same way Complete writes one
	userID := "u-e2e"
	draft := domain.Draft{
		ProfileImages: []string{"https://cdn.swipess.app/u-e2e/a.jpg"},
		Name:          "Dana",
		Age:           pint(31),
		Gender:        domain.GenderFemale,
		Nationality:   "MX",
		Languages:     []string{"es", "en"},
		Interests:     []string{"travel", "music", "food"},
	}
	if err := repo.CompleteOnboarding(ctx, userID, draft, time.Now().UTC()); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	if err := repo.UpdateProfileLocation(ctx, userID, domain.LocationSelection{
		Lat:     19.4326,
		Lng:     -99.1332,
		Address: "Av. Paseo de la Reforma 222, Mexico City",
		City:    pstr("Mexico City"),
		Country: pstr("Mexico"),
		Type:    domain.LocationHome,
	}); err != nil {
		t.Fatalf("UpdateProfileLocation: %v", err)
	}
	for _, p := range shared.DefaultPackages {
		if err := repo.UpsertPackage(ctx, p); err != nil {
			t.Fatalf("UpsertPackage %d: %v", p.ID, err)
		}
	}

	// Spin up minimal HTTP server exposing the routes we need
	api := &testAPI{repo: repo}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/profiles/", api.profile)
	mux.HandleFunc("/v1/packages", api.packages)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	// Hit the profile endpoint
	res, err := http.Get(fmt.Sprintf("%s/v1/profiles/%s", ts.URL, userID))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body struct {
		UserID    string  `json:"user_id"`
		Name      *string `json:"name"`
		Step      string  `json:"onboarding_step"`
		Completed bool    `json:"onboarding_completed"`
		City      *string `json:"city"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != userID || body.Name == nil || *body.Name != "Dana" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if !body.Completed || body.Step != "complete" {
		t.Fatalf("onboarding not committed: %+v", body)
	}
	if body.City == nil || *body.City != "Mexico City" {
		t.Fatalf("location missing: %+v", body)
	}

	// And the package list, cheapest first
	res2, err := http.Get(ts.URL + "/v1/packages")
	if err != nil {
		t.Fatalf("GET packages: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("packages status %d", res2.StatusCode)
	}
	var pkgs []struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Tokens int    `json:"tokens"`
	}
	if err := json.NewDecoder(res2.Body).Decode(&pkgs); err != nil {
		t.Fatalf("decode packages: %v", err)
	}
	if len(pkgs) != len(shared.DefaultPackages) {
		t.Fatalf("want %d packages, got %d", len(shared.DefaultPackages), len(pkgs))
	}
	if pkgs[0].Name != "Starter" || pkgs[0].Tokens != 50 {
		t.Fatalf("unexpected first package: %+v", pkgs[0])
	}
}
