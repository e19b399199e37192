package engine

import (
	"github.com/google/uuid"
)

// Binding records which engine instance and configuration produced a result.
// One Binding is issued per lint stage; its ID is the identity later stages
// compare and key caches on.
type Binding struct {
	ID      uuid.UUID
	Cwd     string
	Variant Variant
	Engine  Engine

	// Fix is the fix-mode selector the engine was constructed with.
	Fix any
}

// NewBinding issues a Binding with a fresh ID.
func NewBinding(eng Engine, variant Variant, cwd string, fix any) *Binding {
	return &Binding{
		ID:      uuid.New(),
		Cwd:     cwd,
		Variant: variant,
		Engine:  eng,
		Fix:     fix,
	}
}

// FixEnabled reports whether the engine was constructed with fix mode on.
func (b *Binding) FixEnabled() bool {
	return b != nil && FixEnabled(b.Fix)
}

// Same reports whether b and other are the same binding.
func (b *Binding) Same(other *Binding) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.ID == other.ID
}
