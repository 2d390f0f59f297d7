// Package metrics provides constants used across metric definitions.
package metrics

// Operation labels for SWORD adapter operations.
const (
	OpServiceDocument     = "service_document"
	OpDepositNew          = "deposit_new"
	OpContainerExists     = "container_exists"
	OpMediaResourceExists = "media_resource_exists"
	OpGetMediaResource    = "get_media_resource"
	OpGetContainer        = "get_container"
	OpGetStatement        = "get_statement"
	OpUnsupported         = "unsupported"
)

// Operation labels for backing service calls.
const (
	OpBackingGet      = "get_notification"
	OpBackingValidate = "validate"
	OpBackingCreate   = "create_notification"
)

// Outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeNotFound       = "not_found"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeBadRequest     = "bad_request"
	OutcomeNotImplemented = "not_implemented"
	OutcomeError          = "error"
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Histogram bucket parameters.
const (
	BucketStart1ms = 0.001
	BucketFactor2  = 2
	BucketCount12  = 12
	BucketCount15  = 15
)
