// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"swipess_api/internal/adapters/assist"
	"swipess_api/internal/adapters/geocode"
	"swipess_api/internal/adapters/media"
	"swipess_api/internal/app"
	"swipess_api/internal/domain"
)

type Handlers struct {
	Onboarding *app.OnboardingService
	Location   *app.LocationService
	Packages   *app.PackageService
	Purchases  *app.PurchaseService
	Assistant  *app.AssistantService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, auth func(http.Handler) http.Handler) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/catalogs", h.getCatalogs)

	s.mux.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/v1/onboarding", h.startOnboarding)
		r.Get("/v1/onboarding/{id}", h.getOnboarding)
		r.Patch("/v1/onboarding/{id}/draft", h.patchDraft)
		r.Post("/v1/onboarding/{id}/photos", h.uploadPhotos)
		r.Post("/v1/onboarding/{id}/advance", h.advanceOnboarding)
		r.Post("/v1/onboarding/{id}/retreat", h.retreatOnboarding)
		r.Post("/v1/onboarding/{id}/skip", h.skipOnboarding)
		r.Post("/v1/onboarding/{id}/complete", h.completeOnboarding)

		r.Get("/v1/profile", h.getProfile)
		r.Put("/v1/profile/location", h.putProfileLocation)

		r.Post("/v1/pickers", h.openPicker)
		r.Get("/v1/pickers/{id}", h.getPicker)
		r.Post("/v1/pickers/{id}/search", h.searchPicker)
		r.Post("/v1/pickers/{id}/catalog", h.catalogPicker)
		r.Post("/v1/pickers/{id}/coordinates", h.resolvePicker)
		r.Post("/v1/pickers/{id}/device", h.devicePicker)

		r.Get("/v1/packages", h.listPackages)
		r.Get("/v1/packages/{id}", h.getPackage)
		r.Post("/v1/purchases", h.beginPurchase)
		r.Post("/v1/purchases/return", h.purchaseReturn)

		r.Post("/v1/assistant/{dialog}/messages", h.sendMessage)
		r.Get("/v1/assistant/{dialog}", h.getDialog)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// fail translates service errors into problem responses. Validation and
// the device outcomes are the caller's to fix; geocoder and assistant
// outages surface as 503 so the client can offer a retry.
func fail(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusUnprocessableEntity, "Validation Failed", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrNoTransition):
		writeProblem(w, http.StatusConflict, "No Such Transition", "the flow cannot move that way")
	case errors.Is(err, domain.ErrBusy):
		writeProblem(w, http.StatusConflict, "Busy", "another request is still in flight")
	case errors.Is(err, domain.ErrNoPending):
		writeProblem(w, http.StatusNotFound, "No Pending Purchase", "nothing is awaiting payment")
	case errors.Is(err, geocode.ErrNoResults):
		writeProblem(w, http.StatusNotFound, "Location Not Found", "no results for that address")
	case errors.Is(err, geocode.ErrQuotaExceeded), errors.Is(err, geocode.ErrRequestDenied):
		writeProblem(w, http.StatusServiceUnavailable, "Location Service Unavailable", "please try again shortly")
	case errors.Is(err, domain.ErrDevicePermission):
		writeProblem(w, http.StatusUnprocessableEntity, "Location Permission Denied", "allow location access and retry")
	case errors.Is(err, domain.ErrDeviceUnavailable):
		writeProblem(w, http.StatusUnprocessableEntity, "Location Unavailable", "could not determine the device position")
	case errors.Is(err, domain.ErrDeviceTimeout):
		writeProblem(w, http.StatusUnprocessableEntity, "Location Timed Out", "getting a position fix took too long")
	case errors.Is(err, assist.ErrOverloaded), errors.Is(err, assist.ErrUnauthorized):
		writeProblem(w, http.StatusServiceUnavailable, "Assistant Unavailable", "please try again shortly")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with a weak ETag and honors If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- catalogs ----

func (h *Handlers) getCatalogs(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, viewCatalogs())
}

// ---- onboarding ----

func (h *Handlers) startOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Onboarding.Start(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSession(sess))
}

func (h *Handlers) getOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Onboarding.Get(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handlers) patchDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string   `json:"name"`
		Age         *int      `json:"age"`
		Gender      *string   `json:"gender"`
		Nationality *string   `json:"nationality"`
		Languages   *[]string `json:"languages"`
		HasChildren *bool     `json:"has_children"`
		Interests   *[]string `json:"interests"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.Onboarding.UpdateDraft(r.Context(), chi.URLParam(r, "id"), userID(r), app.DraftPatch{
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		Nationality: req.Nationality,
		Languages:   req.Languages,
		HasChildren: req.HasChildren,
		Interests:   req.Interests,
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handlers) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected multipart form data")
		return
	}
	fhs := r.MultipartForm.File["photos"]
	if len(fhs) == 0 {
		writeProblem(w, http.StatusUnprocessableEntity, "Validation Failed", "photos: attach at least one file")
		return
	}

	uploads := make([]app.PhotoUpload, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Body", "unreadable file part")
			return
		}
		defer f.Close()
		uploads = append(uploads, app.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	results, sess, err := h.Onboarding.AttachPhotos(r.Context(), chi.URLParam(r, "id"), userID(r), uploads)
	if err != nil {
		fail(w, err)
		return
	}

	out := struct {
		Results []photoResult `json:"results"`
		Session sessionView   `json:"session"`
	}{Results: make([]photoResult, 0, len(results)), Session: viewSession(sess)}
	for _, res := range results {
		pr := photoResult{Filename: res.Filename, URL: res.URL}
		if res.Err != nil {
			pr.Error = uploadMessage(res.Err)
		}
		out.Results = append(out.Results, pr)
	}
	writeJSON(w, http.StatusOK, out)
}

type photoResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// uploadMessage keeps provider refusals user-readable without leaking
// the underlying error text.
func uploadMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return "file is too large"
	case errors.Is(err, media.ErrUnsupportedType):
		return "unsupported file type"
	case errors.Is(err, media.ErrPermissionDenied):
		return "upload not permitted"
	default:
		return "upload failed, try again"
	}
}

func (h *Handlers) advanceOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Onboarding.Advance(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handlers) retreatOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Onboarding.Retreat(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(sess))
}

func (h *Handlers) skipOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.Onboarding.Skip(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.Onboarding.Complete(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- profile ----

func (h *Handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Onboarding.Profile(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfile(p))
}

func (h *Handlers) putProfileLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat          float64 `json:"lat"`
		Lng          float64 `json:"lng"`
		Address      string  `json:"address"`
		City         *string `json:"city"`
		Country      *string `json:"country"`
		Neighborhood *string `json:"neighborhood"`
		Region       *string `json:"region"`
		Type         string  `json:"type"`
	}
	if !decode(w, r, &req) {
		return
	}
	sel := domain.LocationSelection{
		Lat: req.Lat, Lng: req.Lng,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Neighborhood: req.Neighborhood,
		Region:       req.Region,
		Type:         domain.LocationType(req.Type),
	}
	if err := h.Location.ApplyToProfile(r.Context(), userID(r), sel); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- location pickers ----

func (h *Handlers) openPicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationType string `json:"location_type"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Location.Open(r.Context(), req.LocationType)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewPicker(p))
}

func (h *Handlers) getPicker(w http.ResponseWriter, r *http.Request) {
	p, err := h.Location.Picker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPicker(p))
}

func (h *Handlers) searchPicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Location.SearchText(r.Context(), chi.URLParam(r, "id"), req.Query)
	if err != nil {
		fail(w, err)
		return
	}
	writeResolution(w, res)
}

func (h *Handlers) catalogPicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Location.SelectCatalog(r.Context(), chi.URLParam(r, "id"), req.Slug)
	if err != nil {
		fail(w, err)
		return
	}
	writeResolution(w, res)
}

func (h *Handlers) resolvePicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Location.ResolveCoordinates(r.Context(), chi.URLParam(r, "id"), req.Lat, req.Lng)
	if err != nil {
		fail(w, err)
		return
	}
	writeResolution(w, res)
}

func (h *Handlers) devicePicker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fix *struct {
			Lat       float64  `json:"lat"`
			Lng       float64  `json:"lng"`
			AccuracyM *float64 `json:"accuracy_m"`
		} `json:"fix"`
		ErrorCode string `json:"error_code"`
	}
	if !decode(w, r, &req) {
		return
	}
	var fix *domain.DeviceFix
	if req.Fix != nil {
		fix = &domain.DeviceFix{Lat: req.Fix.Lat, Lng: req.Fix.Lng, AccuracyM: req.Fix.AccuracyM}
	}
	res, err := h.Location.UseDevice(r.Context(), chi.URLParam(r, "id"), fix, domain.DeviceError(req.ErrorCode))
	if err != nil {
		fail(w, err)
		return
	}
	writeResolution(w, res)
}

func writeResolution(w http.ResponseWriter, res app.Resolution) {
	writeJSON(w, http.StatusOK, resolutionView{
		Selection:  viewSelection(res.Selection),
		Generation: res.Generation,
		Applied:    res.Applied,
	})
}

// ---- token packages ----

func (h *Handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.Packages.List(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	out := struct {
		Packages []packageView `json:"packages"`
	}{Packages: make([]packageView, 0, len(pkgs))}
	for _, p := range pkgs {
		out.Packages = append(out.Packages, viewPackage(p))
	}
	writeCached(w, r, out)
}

func (h *Handlers) getPackage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	pkg, err := h.Packages.Get(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeCached(w, r, viewPackage(pkg))
}

// ---- purchases ----

func (h *Handlers) beginPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageID  int64  `json:"package_id"`
		ReturnPath string `json:"return_path"`
	}
	if !decode(w, r, &req) {
		return
	}
	redirect, err := h.Purchases.Begin(r.Context(), userID(r), req.PackageID, req.ReturnPath)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		RedirectURL string `json:"redirect_url"`
	}{redirect})
}

func (h *Handlers) purchaseReturn(w http.ResponseWriter, r *http.Request) {
	m, path, err := h.Purchases.CompleteReturn(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		PackageID  int64     `json:"package_id"`
		Tokens     int       `json:"tokens"`
		StartedAt  time.Time `json:"started_at"`
		ReturnPath string    `json:"return_path"`
	}{m.PackageID, m.Tokens, m.CreatedAt, path})
}

// ---- assistant ----

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	msgs, err := h.Assistant.Send(r.Context(), userID(r), chi.URLParam(r, "dialog"), req.Text)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDialog(msgs, false))
}

func (h *Handlers) getDialog(w http.ResponseWriter, r *http.Request) {
	msgs, thinking, err := h.Assistant.Transcript(r.Context(), userID(r), chi.URLParam(r, "dialog"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDialog(msgs, thinking))
}
