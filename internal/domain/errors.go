package domain

import "errors"

// Failure taxonomy for the analysis pipeline. All of these are fatal input or
// data problems: nothing is retried, the caller fixes the input and reruns.
var (
	// ErrInvalidAssetSelection indicates the requested asset set is empty
	// after filtering against the catalog.
	ErrInvalidAssetSelection = errors.New("invalid asset selection")

	// ErrMissingSeriesData indicates a normalized price series is absent for
	// a selected asset.
	ErrMissingSeriesData = errors.New("missing series data")

	// ErrSeriesParse indicates a raw scraped series is malformed (missing or
	// unparsable date/price columns).
	ErrSeriesParse = errors.New("series parse error")

	// ErrInvalidStep indicates the allocation step is outside (0, 100].
	ErrInvalidStep = errors.New("invalid allocation step")

	// ErrInvalidDateFormat indicates the purchase date is malformed or names
	// a calendar date that does not exist (e.g. 2020-02-30).
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrDateOutOfRange indicates the purchase date is a real calendar date
	// but lies outside the analysis window.
	ErrDateOutOfRange = errors.New("date out of range")

	// ErrPurchaseDateNotFound indicates a normalized series unexpectedly has
	// no row for the purchase date. Normalization guarantees full calendar
	// coverage, so this is a defect upstream, not a user error.
	ErrPurchaseDateNotFound = errors.New("purchase date not found in series")

	// ErrInvalidInvestment indicates a non-positive investment amount.
	ErrInvalidInvestment = errors.New("invalid investment amount")
)
