// Package correlation issues the opaque identifiers that link a single
// governed action across the budget fetch, the decision call, dispatch and
// the audit trail.
package correlation

import "github.com/google/uuid"

// NewID returns a new collision-resistant correlation id.
// Stateless; one id is issued per governed action and threaded through
// every downstream call unchanged.
func NewID() string {
	return uuid.NewString()
}
