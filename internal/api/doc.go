// Package api implements the intake and read surface of the menu analysis
// system: menu image upload (which enqueues a job), job status polling,
// question retrieval, one-shot preference submission, and result retrieval.
// Handlers only touch the shared store and queue; all processing happens in
// the worker.
package api
