package model

import "errors"

var (
	// ErrModelNotFound signals a missing artifact file. This is a deployment
	// defect, fatal and never retried.
	ErrModelNotFound = errors.New("model_not_found")
	ErrBadArtifact   = errors.New("bad_model_artifact")
	ErrScoring       = errors.New("scoring_failed")
)
