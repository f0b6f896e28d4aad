// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON endpoints.
const (
	// MaxDocumentBody caps bodies that carry a challenge description or a
	// translation (propose, update, submit).
	MaxDocumentBody = 1 << 20 // 1 MB

	// MaxSmallBody caps reasons, feedback and other short payloads.
	MaxSmallBody = 64 << 10 // 64 KB
)
