package domain

import (
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// ErrRuleNotFound is returned when no rule matches a (client id, resource
// pattern) key.
var ErrRuleNotFound = apperrors.Wrap(apperrors.ErrNotFound, "rule not found")

// ErrAccessDenied is returned when no rule permits the requested action.
var ErrAccessDenied = apperrors.Wrap(apperrors.ErrForbidden, "access denied")
