package carbon

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInvalidStrategy indicates a device strategy other than mobile or desktop.
	ErrInvalidStrategy = constError("invalid strategy")

	// ErrInvalidCoefficients indicates a coefficient table that fails validation.
	ErrInvalidCoefficients = constError("invalid coefficients")
)
