// Package auth holds the client-side session: the persisted token pair, the
// local expiry check on the access token, the authenticated/unauthenticated
// decision, session termination, and the HTTP transport that attaches the
// bearer credential and reacts to 401 responses.
//
// Nothing here verifies token signatures. Expiry is a local heuristic; the API
// server remains the authority and signals rejection with 401.
package auth
