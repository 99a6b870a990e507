package postgres

const eventColumns = `
  id, title, date_start, date_end, time_start, time_end, place, format,
  department_id, department_ids, labels, limit_participants, description,
  post_link, reg_link, responsible_link, repeat_rule, status, request_id,
  created_at, updated_at`

const insertEventSQL = `
INSERT INTO events (
  title, date_start, date_end, time_start, time_end, place, format,
  department_id, department_ids, labels, limit_participants, description,
  post_link, reg_link, responsible_link, repeat_rule, status, request_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW(),NOW())
RETURNING id`

const updateEventFieldsSQL = `
UPDATE events SET
  title=$2, date_start=$3, date_end=$4, time_start=$5, time_end=$6,
  place=$7, format=$8, department_id=$9, department_ids=$10, labels=$11,
  limit_participants=$12, description=$13, post_link=$14, reg_link=$15,
  responsible_link=$16, repeat_rule=$17, updated_at=NOW()
WHERE id=$1`

const getEventSQL = `SELECT` + eventColumns + ` FROM events WHERE id = $1`

const listVisibleEventsSQL = `
SELECT` + eventColumns + `
FROM events
WHERE status <> 'canceled'
  AND ($1::date IS NULL OR date_end   >= $1)
  AND ($2::date IS NULL OR date_start <= $2)
ORDER BY date_start ASC, time_start ASC, id ASC`

const conflictCandidatesSQL = `
SELECT` + eventColumns + `
FROM events
WHERE status = 'planned'
  AND (
    (date_start >= $1 AND date_start <= $2) OR
    (date_end   >= $1 AND date_end   <= $2)
  )
ORDER BY date_start ASC, id ASC`

const requestColumns = `
  id, organizer_id, title, date_start, date_end, time_start, time_end, place,
  format, department_id, department_ids, labels, limit_participants,
  description, post_link, reg_link, responsible_link, repeat_rule, status,
  comments, revision_snapshot, has_conflict, event_id, created_at, updated_at`

const insertRequestSQL = `
INSERT INTO event_requests (
  organizer_id, title, date_start, date_end, time_start, time_end, place,
  format, department_id, department_ids, labels, limit_participants,
  description, post_link, reg_link, responsible_link, repeat_rule, status,
  has_conflict, event_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$21)
RETURNING id`

const getRequestSQL = `SELECT` + requestColumns + ` FROM event_requests WHERE id = $1`

const requestHeadSQL = `
SELECT id, organizer_id, status, event_id FROM event_requests WHERE id = $1`

const saveRequestSQL = `
UPDATE event_requests SET
  title=$2, date_start=$3, date_end=$4, time_start=$5, time_end=$6,
  place=$7, format=$8, department_id=$9, department_ids=$10, labels=$11,
  limit_participants=$12, description=$13, post_link=$14, reg_link=$15,
  responsible_link=$16, repeat_rule=$17, status=$18, has_conflict=$19,
  updated_at=$20
WHERE id=$1`

const listRequestsSQL = `
SELECT` + requestColumns + `
FROM event_requests
WHERE ($1::bigint IS NULL OR organizer_id = $1)
ORDER BY created_at DESC, id DESC`

const pendingCountSQL = `
SELECT COUNT(*) FROM event_requests WHERE status = 'pending'`
