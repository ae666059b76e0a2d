package leads

import "errors"

var (
	// ErrMissingFields is returned when any required field is absent.
	// Field-level detail is intentionally not surfaced.
	ErrMissingFields = errors.New("please fill in all required fields")

	// ErrOtherServiceRequired is returned when service is "Other" without a
	// free-text description.
	ErrOtherServiceRequired = errors.New("please specify the other service required")

	// ErrRateLimited is returned when an identity exceeds the submission
	// window.
	ErrRateLimited = errors.New("too many submissions")

	// ErrChallengeFailed is returned when a configured challenge
	// verification rejects the token.
	ErrChallengeFailed = errors.New("challenge verification failed")

	// ErrStorageFailed is returned when the lead could not be persisted.
	// The submission is lost; the client must retry.
	ErrStorageFailed = errors.New("unable to save lead")
)
