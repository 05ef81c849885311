// Package http exposes the program scheduler over a chi router.
//
// Every program route lives under /events/{eventID}:
//   - GET/POST /sessions, GET/PUT/DELETE /sessions/{sessionID}: session
//     management exchanging the sessionDTO payload defined in program_handler.go.
//     Writes answer with the stored session plus any room conflict warnings; a
//     conflict never rejects a write.
//   - GET /sessions/{sessionID}/changes: edit history of a session.
//   - POST /sessions/check: conflict pre-flight for a candidate session
//     without persisting it. Body is a session payload plus optional "exclude_id".
//   - GET /conflicts: every room conflict of the event.
//   - GET/POST /assignments, DELETE /assignments/{assignmentID}: participant to
//     session links.
//   - GET /stats: program counters.
//   - GET /reminders/upcoming: reminders inside the look-around window.
//   - POST /reminders/send: delivers every reminder that is due now.
//   - POST /sessions/{sessionID}/reminders/send: delivers one session's reminder.
//   - GET /reminders/live: websocket feed that pushes the upcoming list on
//     connect and after every refresh interval.
//   - GET/POST /days|tracks|rooms|speakers|contingencies|participants and
//     DELETE /{collection}/{id}: catalog collections (catalog_handler.go).
//
// GET /health answers with a plain heartbeat. Errors are JSON objects with a
// "message" and, for validation failures, an "errors" map keyed by field.
package http
