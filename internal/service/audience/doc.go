// Package audience implements custom-audience creation and the batch-upload
// pipeline that populates it.
//
// A request flows one way: customer records are normalized and hashed,
// grouped by which identifiers they carry, split into bounded batches, and
// uploaded one batch at a time. A failed batch is recorded and skipped; it
// never aborts the batches after it.
//
// The service depends on the Platform interface defined in platform.go and
// keeps no state between calls.
package audience
