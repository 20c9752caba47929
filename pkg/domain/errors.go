package domain

import "errors"

// ErrBackend wraps any transport or server failure of the recipe backend.
var ErrBackend = errors.New("recipe backend failure")

// ErrEmptyResult is returned when the backend answers without usable data.
var ErrEmptyResult = errors.New("backend returned no usable data")

// ErrNoMatch is returned when a selection does not resolve to any candidate.
var ErrNoMatch = errors.New("no matching recipe")

// ErrInvalidCredentials is returned when login fails.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUserExists is returned when signing up with a taken username.
var ErrUserExists = errors.New("username already exists")

// ErrNotLoggedIn is returned when a conversation is requested without an identity.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrInvalidSession is returned when a session violates its invariants.
var ErrInvalidSession = errors.New("invalid session")

// ErrSpeechUnsupported is returned when speech capture is not available on this runtime.
var ErrSpeechUnsupported = errors.New("speech recognition not supported")
