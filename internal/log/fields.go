// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldUserID    = "user_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Content fields
	FieldSlug     = "slug"
	FieldCategory = "category"
	FieldCacheKey = "cache_key"

	// Path / URL fields
	FieldPath = "path"
)
