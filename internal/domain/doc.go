// Package domain contains the core business entities and value objects of
// the menu analysis system: queued jobs, per-job record status, and the
// structured question/preference/recommendation values exchanged with the
// language model and the intake API.
package domain
