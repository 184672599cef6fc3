package backoffice

import (
	"errors"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

var (
	ErrTableNotFound       = errors.New("backoffice: table not found")
	ErrRecordNotFound      = errors.New("backoffice: record not found")
	ErrUnknownAction       = errors.New("backoffice: unknown action")
	ErrActionNotApplicable = errors.New("backoffice: action does not apply to record")
	ErrInvalidParams       = errors.New("backoffice: invalid action parameters")
	ErrUnsupportedFormat   = errors.New("backoffice: unsupported export format")
	ErrUnknownStatus       = errors.New("backoffice: unknown status")
	ErrUnknownColumn       = errors.New("backoffice: unknown column")
	ErrChartNotDefined     = errors.New("backoffice: table has no chart")
	ErrForbidden           = errors.New("backoffice: forbidden")
	ErrUnauthenticated     = errors.New("backoffice: authentication required")
	ErrInvalidCredentials  = errors.New("backoffice: invalid credentials")
	ErrSessionNotFound     = errors.New("backoffice: session not found")
	ErrInvalidToken        = errors.New("backoffice: invalid session token")
	ErrMissingViewer       = errors.New("backoffice: viewer context missing user id")
)

// IsNotFound reports whether err means a table, record or session is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation reports whether err was caused by caller input.
func IsValidation(err error) bool {
	return errors.Is(err, tableview.ErrUnknownFilter) ||
		errors.Is(err, tableview.ErrUnknownSort) ||
		errors.Is(err, tableview.ErrSearchUnsupported) ||
		errors.Is(err, tableview.ErrInvalidPageSize) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrActionNotApplicable) ||
		errors.Is(err, ErrInvalidParams) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnknownStatus) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrChartNotDefined) ||
		errors.Is(err, ErrMissingViewer)
}

// IsForbidden reports whether err is an authentication or authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken)
}
