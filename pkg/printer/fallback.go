package printer

import (
	"errors"
	"fmt"
)

// Surface names reported by FallbackPrinter.PrintVia.
const (
	SurfacePrimary   = "primary"
	SurfaceSecondary = "secondary"
)

// FallbackPrinter sends a job to the primary printer and, when that fails,
// to the secondary one. The till keeps trading when the receipt printer is
// unplugged: the job lands on the secondary surface instead.
type FallbackPrinter struct {
	primary   Printer
	secondary Printer
}

// NewFallbackPrinter chains primary and secondary. secondary may be nil.
func NewFallbackPrinter(primary, secondary Printer) *FallbackPrinter {
	return &FallbackPrinter{primary: primary, secondary: secondary}
}

// PrintVia prints data and reports which surface took the job.
func (p *FallbackPrinter) PrintVia(data []byte) (string, error) {
	perr := p.primary.Print(data)
	if perr == nil {
		return SurfacePrimary, nil
	}
	if p.secondary == nil {
		return "", perr
	}
	if serr := p.secondary.Print(data); serr != nil {
		return "", fmt.Errorf("printer: all surfaces failed: %w", errors.Join(perr, serr))
	}
	return SurfaceSecondary, nil
}

// Print implements Printer.
func (p *FallbackPrinter) Print(data []byte) error {
	_, err := p.PrintVia(data)
	return err
}

// Close closes both printers.
func (p *FallbackPrinter) Close() error {
	err := p.primary.Close()
	if p.secondary != nil {
		err = errors.Join(err, p.secondary.Close())
	}
	return err
}

// IsConnected reports whether any surface is reachable.
func (p *FallbackPrinter) IsConnected() bool {
	if p.primary.IsConnected() {
		return true
	}
	return p.secondary != nil && p.secondary.IsConnected()
}

// PrimaryConnected reports whether the primary printer is reachable.
func (p *FallbackPrinter) PrimaryConnected() bool {
	return p.primary.IsConnected()
}
