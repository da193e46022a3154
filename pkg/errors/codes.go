package errors

import "net/http"

// Code is the stable machine-readable error identifier returned to clients.
type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeMissingProof        Code = "MISSING_PROOF"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConflict            Code = "CONFLICT"
	CodeAlreadyDecided      Code = "ALREADY_DECIDED"
	CodeInventoryContention Code = "INVENTORY_CONTENTION"
	CodeInsufficientStock   Code = "INSUFFICIENT_STOCK"
	CodeStateConflict       Code = "STATE_CONFLICT"
	CodeIdempotency         Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit           Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal            Code = "INTERNAL_ERROR"
	CodeDependency          Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	final     = false
	retryable = true
	opaque    = false
	detailed  = true
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:          {http.StatusBadRequest, final, "validation failed", detailed},
	CodeMissingProof:        {http.StatusBadRequest, final, "payment proof required", detailed},
	CodeUnauthorized:        {http.StatusUnauthorized, final, "authentication required", opaque},
	CodeForbidden:           {http.StatusForbidden, final, "access denied", opaque},
	CodeNotFound:            {http.StatusNotFound, final, "resource not found", opaque},
	CodeConflict:            {http.StatusConflict, final, "conflict detected", opaque},
	CodeAlreadyDecided:      {http.StatusConflict, final, "order already decided", detailed},
	CodeInventoryContention: {http.StatusConflict, retryable, "inventory changed concurrently, retry the decision", detailed},
	CodeInsufficientStock:   {http.StatusConflict, final, "insufficient stock", detailed},
	CodeStateConflict:       {http.StatusUnprocessableEntity, final, "state transition disallowed", detailed},
	CodeIdempotency:         {http.StatusConflict, final, "idempotency key reused", detailed},
	CodeRateLimit:           {http.StatusTooManyRequests, final, "rate limit exceeded", opaque},
	CodeInternal:            {http.StatusInternalServerError, retryable, "internal server error", opaque},
	CodeDependency:          {http.StatusServiceUnavailable, retryable, "dependency unavailable", detailed},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}
