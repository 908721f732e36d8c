// Package pipeline contains the job orchestration core: the dispatcher
// that consumes jobs from the shared queue and the per-job state machine
// that drives each one through digesting its menu images, generating
// questions, waiting for externally-supplied user preferences, and
// generating recommendations.
package pipeline
