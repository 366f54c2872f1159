// Package auth implements the access-control gateway that sits in front
// of every shopbox handler.
//
// The gateway decides, per request, whether the route is public or
// protected. Public routes go straight to the downstream handler.
// Protected routes must present credentials through one of the supported
// mechanisms: a session cookie obtained via form login, a bearer token
// obtained from the token endpoint, or plain HTTP Basic.
//
// The user directory is immutable after construction, so it is shared
// across all requests without locking. Passwords are never stored, only
// bcrypt hashes of them, and a failed login never reveals whether the
// username exists: unknown users pay the same bcrypt cost as known ones
// and produce the same response.
package auth
