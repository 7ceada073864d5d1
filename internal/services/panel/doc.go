// Package panel serves the two-stage admin UI: an input stage where the
// operator enters a REST endpoint, and an admin panel listing the users
// resource of that endpoint with columns guessed from the data.
//
// No state survives a request. Every render rebuilds the input stage from the
// submitted form or query and binds a fresh data provider to the endpoint.
package panel
