package mysql

// Profile writes are upserts: the identity service owns account creation
// and this side may see a user before their row exists.

const completeOnboardingSQL = `
INSERT INTO profiles
  (user_id, name, age, gender, nationality, languages, has_children, interests,
   profile_images, onboarding_completed, onboarding_step, onboarding_completed_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON DUPLICATE KEY UPDATE
  name                    = VALUES(name),
  age                     = VALUES(age),
  gender                  = VALUES(gender),
  nationality             = VALUES(nationality),
  languages               = VALUES(languages),
  has_children            = VALUES(has_children),
  interests               = VALUES(interests),
  profile_images          = VALUES(profile_images),
  onboarding_completed    = 1,
  onboarding_step         = VALUES(onboarding_step),
  onboarding_completed_at = VALUES(onboarding_completed_at),
  updated_at              = CURRENT_TIMESTAMP
`

const markSkippedSQL = `
INSERT INTO profiles (user_id, onboarding_completed, onboarding_step)
VALUES (?, 0, ?)
ON DUPLICATE KEY UPDATE
  onboarding_completed = 0,
  onboarding_step      = VALUES(onboarding_step),
  updated_at           = CURRENT_TIMESTAMP
`

const updateLocationSQL = `
INSERT INTO profiles
  (user_id, lat, lng, address, city, country, neighborhood, region, location_type)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  lat           = VALUES(lat),
  lng           = VALUES(lng),
  address       = VALUES(address),
  city          = VALUES(city),
  country       = VALUES(country),
  neighborhood  = VALUES(neighborhood),
  region        = VALUES(region),
  location_type = VALUES(location_type),
  updated_at    = CURRENT_TIMESTAMP
`

const insertNotificationSQL = `
INSERT INTO notifications (user_id, kind, title, body)
VALUES (?, ?, ?, ?)
`

// Seeder only; API reads never write packages.
const upsertPackageSQL = `
INSERT INTO token_packages
  (id, name, tokens, price_cents, currency, tier, features, valid_from, valid_until, active)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  tokens      = VALUES(tokens),
  price_cents = VALUES(price_cents),
  currency    = VALUES(currency),
  tier        = VALUES(tier),
  features    = VALUES(features),
  valid_from  = VALUES(valid_from),
  valid_until = VALUES(valid_until),
  active      = VALUES(active),
  updated_at  = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getProfileSQL = `
SELECT
  user_id,
  name,
  age,
  gender,
  nationality,
  languages,
  has_children,
  interests,
  profile_images,
  onboarding_completed,
  onboarding_step,
  onboarding_completed_at,
  lat,
  lng,
  address,
  city,
  country,
  neighborhood,
  region,
  location_type,
  created_at,
  updated_at
FROM profiles
WHERE user_id = ?
`

// The window filter runs at read time; the short cache TTL in front of this
// query bounds how long an expired package can linger in a cached list.
const listActivePackagesSQL = `
SELECT id, name, tokens, price_cents, currency, tier, features, valid_from, valid_until, active
FROM token_packages
WHERE active = 1
  AND (valid_from  IS NULL OR valid_from  <= NOW())
  AND (valid_until IS NULL OR valid_until >= NOW())
ORDER BY price_cents
`

const getPackageSQL = `
SELECT id, name, tokens, price_cents, currency, tier, features, valid_from, valid_until, active
FROM token_packages
WHERE id = ?
`
