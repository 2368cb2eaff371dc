package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist at the given id.
	ErrNotFound = errors.New("document not found")
	// ErrExists indicates a create hit an id that is already taken.
	ErrExists = errors.New("document already exists")
	// ErrAccessDenied indicates the user is neither owner nor collaborator.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidInput indicates missing or malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)
