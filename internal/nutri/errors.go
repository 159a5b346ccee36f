package nutri

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a logged-in user.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrQuotaExceeded means the free daily allowance is used up. It is a
	// decision outcome, not a failure: callers offer the upgrade path.
	ErrQuotaExceeded = errors.New("daily free analyses used up")

	// ErrEmptyInput is returned when neither text nor an image was supplied.
	ErrEmptyInput = errors.New("nothing to analyze: provide a description or an image")

	// ErrAnalysisFailed wraps any failure of the inference service.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrCheckoutFailed wraps any failure to obtain a checkout URL.
	ErrCheckoutFailed = errors.New("checkout failed")

	// ErrCheckoutInProgress is returned while a checkout is already being started.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)
