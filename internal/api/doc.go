// Package api handles incoming HTTP requests, request validation, and
// response formatting for the Taskward API. It adapts HTTP concerns to the
// auth, magiclink and task services, keeping business rules out of the
// handlers themselves.
package api
