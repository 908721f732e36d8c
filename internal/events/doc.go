// Package events is the pipeline's observability channel.
//
// The job pipeline never surfaces degraded completions or failed
// extractions to its caller; it reports them here instead. Handlers are
// registered on an emitter at process startup, so the pipeline can publish
// without knowing who is listening. The default handler logs every event
// with its full payload, including the original model text of a failed
// extraction.
package events
