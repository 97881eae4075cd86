package mysql

const propertyColumns = `
  id, title, description, price, location, property_type, bedrooms, bathrooms,
  area, distance, amenities, images, available_from, lease_term, deposit,
  landlord_id, created_at, updated_at`

const insertPropertySQL = `
INSERT INTO properties
  (id, title, description, price, location, property_type, bedrooms, bathrooms,
   area, distance, amenities, images, available_from, lease_term, deposit,
   landlord_id, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePropertySQL = `
UPDATE properties SET
  title          = ?,
  description    = ?,
  price          = ?,
  location       = ?,
  property_type  = ?,
  bedrooms       = ?,
  bathrooms      = ?,
  area           = ?,
  distance       = ?,
  amenities      = ?,
  images         = ?,
  available_from = ?,
  lease_term     = ?,
  deposit        = ?,
  updated_at     = ?
WHERE id = ? AND deleted_at IS NULL
`

const softDeletePropertySQL = `UPDATE properties SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

const getPropertySQL = `SELECT` + propertyColumns + `
FROM properties
WHERE id = ? AND deleted_at IS NULL`

// -----------------------------------------------------------------------------
// SAVED SEARCHES
// -----------------------------------------------------------------------------

const savedSearchColumns = `
  id, user_id, name, filters, email_notifications, notification_frequency,
  last_notified, created_at, updated_at`

const insertSavedSearchSQL = `
INSERT INTO saved_searches
  (id, user_id, name, filters, email_notifications, notification_frequency,
   last_notified, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// last_notified is written only by setLastNotifiedSQL.
const updateSavedSearchSQL = `
UPDATE saved_searches SET
  name                   = ?,
  filters                = ?,
  email_notifications    = ?,
  notification_frequency = ?,
  updated_at             = ?
WHERE id = ?
`

const setLastNotifiedSQL = `UPDATE saved_searches SET last_notified = ? WHERE id = ?`

const getSavedSearchSQL = `SELECT` + savedSearchColumns + ` FROM saved_searches WHERE id = ?`

const listSavedSearchesSQL = `SELECT` + savedSearchColumns + `
FROM saved_searches
WHERE user_id = ?
ORDER BY created_at DESC, id`

const listActiveSavedSearchesSQL = `SELECT` + savedSearchColumns + `
FROM saved_searches
WHERE email_notifications = TRUE
ORDER BY id`

// -----------------------------------------------------------------------------
// USERS / FAVORITES / VIEWINGS
// -----------------------------------------------------------------------------

const upsertUserSQL = `
INSERT INTO users (id, email, display_name)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  email        = VALUES(email),
  display_name = VALUES(display_name)
`

const getUserSQL = `SELECT id, email, display_name FROM users WHERE id = ?`

const addFavoriteSQL = `INSERT IGNORE INTO favorites (user_id, property_id, created_at) VALUES (?, ?, ?)`

const viewingColumns = `
  id, property_id, property_title, landlord_id, user_id, user_email, user_name,
  viewing_date, viewing_time, notes, status, created_at, updated_at`

const insertViewingSQL = `
INSERT INTO viewings
  (id, property_id, property_title, landlord_id, user_id, user_email, user_name,
   viewing_date, viewing_time, notes, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// REVIEWS / INQUIRIES / MESSAGES
// -----------------------------------------------------------------------------

const reviewColumns = `
  id, property_id, user_id, user_name, rating, comment, created_at, updated_at`

const insertReviewSQL = `
INSERT INTO reviews
  (id, property_id, user_id, user_name, rating, comment, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReviewSQL = `UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?`

const listReviewsSQL = `SELECT` + reviewColumns + `
FROM reviews
WHERE property_id = ?
ORDER BY created_at DESC, id`

const inquiryColumns = `
  id, property_id, property_title, landlord_id, tenant_id, tenant_name, tenant_email,
  tenant_phone, message, status, response, response_at, created_at, updated_at`

const insertInquirySQL = `
INSERT INTO inquiries
  (id, property_id, property_title, landlord_id, tenant_id, tenant_name, tenant_email,
   tenant_phone, message, status, response, response_at, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// COALESCE keeps an earlier response when a status change carries none.
const updateInquirySQL = `
UPDATE inquiries SET
  status      = ?,
  response    = COALESCE(?, response),
  response_at = COALESCE(?, response_at),
  updated_at  = ?
WHERE id = ?
`

const messageColumns = `
  id, property_id, sender_id, receiver_id, content, is_read, created_at`

const insertMessageSQL = `
INSERT INTO messages
  (id, property_id, sender_id, receiver_id, content, is_read, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const listConversationSQL = `SELECT` + messageColumns + `
FROM messages
WHERE property_id = ?
  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
ORDER BY created_at, id`

const listMessagesForUserSQL = `SELECT` + messageColumns + `
FROM messages
WHERE sender_id = ? OR receiver_id = ?
ORDER BY created_at DESC, id`
