package contracts

import "errors"

// Error taxonomy for the scoring pipeline. Anything in the serving path
// degrades locally to a documented default; anything in the
// training/promotion path is fatal only to that batch run and leaves
// production untouched.
var (
	// ErrInsufficientData signals fewer bars than feature computation
	// requires. Callers return empty features, not a failure.
	ErrInsufficientData = errors.New("insufficient bar history")

	// ErrProviderUnavailable signals an upstream call failure. The
	// serving path substitutes documented defaults.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrModelNotTrained signals serving before any artifact exists for
	// a horizon. That horizon gets the neutral default score.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrArtifactIncompatible signals a serialized artifact that cannot
	// be decoded under the current schema, even via the legacy path.
	ErrArtifactIncompatible = errors.New("artifact incompatible")
)
