package arm32

import (
	"fmt"

	"armlift/internal/ir"
)

// Context exposes the architectural state the lifter reads: the mapping
// from registers to IR variables and the operating mode. It is owned by
// the caller and may be shared across translations; the lifter never
// writes to it. Fresh temporaries come from the per-translation
// builder, not from the context.
type Context interface {
	RegVar(r Register) (*ir.Var, error)
	Mode() Mode
}

// ArchContext is the default Context. Register variables are created
// once and handed out as long-lived handles.
type ArchContext struct {
	mode Mode
	vars [numRegisters]*ir.Var
}

// NewContext builds a context for the given operating mode.
func NewContext(mode Mode) *ArchContext {
	c := &ArchContext{mode: mode}
	for r := 0; r < numRegisters; r++ {
		reg := Register(r)
		c.vars[r] = &ir.Var{ID: r, Name: reg.String(), Width: reg.BitWidth()}
	}
	return c
}

// RegVar returns the IR variable for r.
func (c *ArchContext) RegVar(r Register) (*ir.Var, error) {
	if int(r) < 0 || int(r) >= numRegisters {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRegister, int(r))
	}
	return c.vars[r], nil
}

// Mode returns the operating mode the context was built for.
func (c *ArchContext) Mode() Mode { return c.mode }
