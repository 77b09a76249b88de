package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"swipess_api/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// CompleteOnboarding maps every draft field onto the profile row in one
// statement and stamps the completion.
func (r *Repo) CompleteOnboarding(ctx context.Context, userID string, d domain.Draft, completedAt time.Time) error {
	langs, _ := json.Marshal(d.Languages)
	interests, _ := json.Marshal(d.Interests)
	images, _ := json.Marshal(d.ProfileImages)
	_, err := r.db.ExecContext(ctx, completeOnboardingSQL,
		userID,
		d.Name,
		valInt(d.Age),
		string(d.Gender),
		d.Nationality,
		string(langs),
		d.HasChildren,
		string(interests),
		string(images),
		domain.StepComplete.String(),
		completedAt,
	)
	return err
}

// MarkOnboardingSkipped records how far the user got and nothing else.
func (r *Repo) MarkOnboardingSkipped(ctx context.Context, userID string, reached domain.Step) error {
	_, err := r.db.ExecContext(ctx, markSkippedSQL, userID, reached.String())
	return err
}

func (r *Repo) UpdateProfileLocation(ctx context.Context, userID string, sel domain.LocationSelection) error {
	_, err := r.db.ExecContext(ctx, updateLocationSQL,
		userID,
		sel.Lat,
		sel.Lng,
		sel.Address,
		valStr(sel.City),
		valStr(sel.Country),
		valStr(sel.Neighborhood),
		valStr(sel.Region),
		string(sel.Type),
	)
	return err
}

func (r *Repo) InsertNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx, insertNotificationSQL, n.UserID, n.Kind, n.Title, n.Body)
	return err
}

// UpsertPackage is the seeder's write path; the API never calls it.
func (r *Repo) UpsertPackage(ctx context.Context, p domain.TokenPackage) error {
	features, _ := json.Marshal(p.Features)
	_, err := r.db.ExecContext(ctx, upsertPackageSQL,
		p.ID,
		p.Name,
		p.Tokens,
		p.PriceCents,
		p.Currency,
		string(p.Tier),
		string(features),
		valTime(p.ValidFrom),
		valTime(p.ValidUntil),
		p.Active,
	)
	return err
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, getProfileSQL, userID)

	var p domain.Profile
	var name, gender, nationality sql.NullString
	var age sql.NullInt64
	var langsJSON, interestsJSON, imagesJSON []byte
	var hasChildren sql.NullBool
	var step sql.NullString
	var completedAt sql.NullTime
	var lat, lng sql.NullFloat64
	var address, city, country, neighborhood, region, locType sql.NullString

	if err := row.Scan(
		&p.UserID,
		&name,
		&age,
		&gender,
		&nationality,
		&langsJSON,
		&hasChildren,
		&interestsJSON,
		&imagesJSON,
		&p.OnboardingCompleted,
		&step,
		&completedAt,
		&lat, &lng,
		&address, &city, &country, &neighborhood, &region,
		&locType,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Profile{}, domain.ErrNotFound
		}
		return domain.Profile{}, err
	}

	if name.Valid {
		ns := name.String
		p.Name = &ns
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if gender.Valid {
		g := domain.Gender(gender.String)
		p.Gender = &g
	}
	if nationality.Valid {
		n := nationality.String
		p.Nationality = &n
	}
	if hasChildren.Valid {
		b := hasChildren.Bool
		p.HasChildren = &b
	}
	if step.Valid {
		if st, ok := domain.ParseStep(step.String); ok {
			p.OnboardingStep = st
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.OnboardingCompletedAt = &t
	}
	_ = json.Unmarshal(langsJSON, &p.Languages)
	_ = json.Unmarshal(interestsJSON, &p.Interests)
	_ = json.Unmarshal(imagesJSON, &p.ProfileImages)

	// coordinates are set together or not at all; the address may still be
	// empty after a failed reverse geocode
	if lat.Valid && lng.Valid {
		loc := domain.LocationSelection{Lat: lat.Float64, Lng: lng.Float64}
		if address.Valid {
			loc.Address = address.String
		}
		if city.Valid {
			c := city.String
			loc.City = &c
		}
		if country.Valid {
			c := country.String
			loc.Country = &c
		}
		if neighborhood.Valid {
			n := neighborhood.String
			loc.Neighborhood = &n
		}
		if region.Valid {
			rg := region.String
			loc.Region = &rg
		}
		if locType.Valid {
			loc.Type = domain.LocationType(locType.String)
		}
		p.Location = &loc
	}
	return p, nil
}

func (r *Repo) ListActivePackages(ctx context.Context) ([]domain.TokenPackage, error) {
	rows, err := r.db.QueryContext(ctx, listActivePackagesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TokenPackage
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetPackage(ctx context.Context, id int64) (domain.TokenPackage, error) {
	p, err := scanPackage(r.db.QueryRowContext(ctx, getPackageSQL, id))
	if err == sql.ErrNoRows {
		return domain.TokenPackage{}, domain.ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(sc rowScanner) (domain.TokenPackage, error) {
	var p domain.TokenPackage
	var featuresJSON []byte
	var from, until sql.NullTime
	if err := sc.Scan(
		&p.ID,
		&p.Name,
		&p.Tokens,
		&p.PriceCents,
		&p.Currency,
		&p.Tier,
		&featuresJSON,
		&from,
		&until,
		&p.Active,
	); err != nil {
		return domain.TokenPackage{}, err
	}
	_ = json.Unmarshal(featuresJSON, &p.Features)
	if from.Valid {
		t := from.Time
		p.ValidFrom = &t
	}
	if until.Valid {
		t := until.Time
		p.ValidUntil = &t
	}
	return p, nil
}
