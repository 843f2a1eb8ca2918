package library

import "errors"

var (
	// ErrLastMembership is returned when removing a membership would leave
	// the record with none. Callers must offer a corrective path instead.
	ErrLastMembership = errors.New("cannot remove a record's last membership")

	// ErrRootCollection is returned when an operation targets the unnamed
	// root collection.
	ErrRootCollection = errors.New("operation not allowed on the root collection")

	// ErrEmptyName is returned when a collection name is empty where one is
	// required.
	ErrEmptyName = errors.New("collection name is empty")

	// ErrSameName is returned when a rename maps a collection onto itself.
	ErrSameName = errors.New("old and new collection names are identical")

	// ErrDescendantTarget is returned when a rename would move a collection
	// underneath one of its own descendants.
	ErrDescendantTarget = errors.New("cannot rename a collection into its own subtree")
)
