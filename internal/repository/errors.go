package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the
// repository. It abstracts the underlying storage implementation from
// the service layer.
var ErrNotFound = errors.New("record not found")

// ErrPairMemberTaken is returned when a contestant is registered as a
// member of more than one pair.
var ErrPairMemberTaken = errors.New("contestant already belongs to a pair")

// ErrInvalidTable is returned when attempting to clear a table that is
// not whitelisted.
var ErrInvalidTable = errors.New("invalid table name")
