package structure

import (
	"fmt"
	"strings"

	"github.com/chazu/prismesh/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// ErrInvalidStructure is wrapped by ValidationResult.Err.
var ErrInvalidStructure = errors.New("structure: invalid")

// ValidationSeverity indicates whether a finding blocks meshing or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks meshing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single finding. Subject names the part of
// the prism at fault, e.g. "footprint", "hole 2" or "surface 0 hole 1".
type ValidationError struct {
	Subject  string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Subject, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Subject string
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the blocking errors into one error wrapping
// ErrInvalidStructure, or returns nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return errors.Wrap(ErrInvalidStructure, strings.Join(msgs, "; "))
}

// Validate checks the prism in three tiers and never mutates it.
//
// Tier 1 (errors): elevations and ring validity for the footprint, holes
// and every internal surface ring.
// Tier 2 (errors): holes inside the footprint and not overlapping each
// other; surface holes inside their surface.
// Tier 3 (warnings): constraints, aux points and surfaces whose
// elevations fall outside the prism, degenerate constraints, and surfaces
// extending beyond the footprint.
func (p *Prism) Validate(eps float64) ValidationResult {
	var r ValidationResult
	r.Errors = append(r.Errors, p.validateRings(eps)...)
	if len(r.Errors) == 0 {
		r.Errors = append(r.Errors, p.validateContainment(eps)...)
	}
	r.Warnings = append(r.Warnings, p.validateElevations(eps)...)
	return r
}

func ringError(subject string, err error) ValidationError {
	return ValidationError{Subject: subject, Message: err.Error(), Severity: SeverityError}
}

func (p *Prism) validateRings(eps float64) []ValidationError {
	var errs []ValidationError
	if !(p.base < p.top) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("base %g is not below top %g", p.base, p.top),
			Severity: SeverityError,
		})
	}
	if err := geom.ValidatePolygon(p.footprint, eps); err != nil {
		errs = append(errs, ringError("footprint", err))
	}
	for i, h := range p.holes {
		if err := geom.ValidatePolygon(h, eps); err != nil {
			errs = append(errs, ringError(fmt.Sprintf("hole %d", i), err))
		}
	}
	for i, s := range p.surfaces {
		if err := geom.ValidatePolygon(s.Outer, eps); err != nil {
			errs = append(errs, ringError(fmt.Sprintf("surface %d", i), err))
		}
		for j, h := range s.Holes {
			if err := geom.ValidatePolygon(h, eps); err != nil {
				errs = append(errs, ringError(fmt.Sprintf("surface %d hole %d", i, j), err))
			}
		}
	}
	return errs
}

func (p *Prism) validateContainment(eps float64) []ValidationError {
	var errs []ValidationError
	for i, h := range p.holes {
		if !geom.PolygonInside(h, p.footprint, eps) {
			errs = append(errs, ValidationError{
				Subject:  fmt.Sprintf("hole %d", i),
				Message:  "not contained in the footprint",
				Severity: SeverityError,
			})
		}
		for j := i + 1; j < len(p.holes); j++ {
			if geom.PolygonsOverlap(h, p.holes[j], eps) {
				errs = append(errs, ValidationError{
					Subject:  fmt.Sprintf("hole %d", i),
					Message:  fmt.Sprintf("overlaps hole %d", j),
					Severity: SeverityError,
				})
			}
		}
	}
	for i, s := range p.surfaces {
		for j, h := range s.Holes {
			if !geom.PolygonInside(h, s.Outer, eps) {
				errs = append(errs, ValidationError{
					Subject:  fmt.Sprintf("surface %d hole %d", i, j),
					Message:  "not contained in the surface",
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func (p *Prism) validateElevations(eps float64) []ValidationWarning {
	var warns []ValidationWarning
	for i, c := range p.constraints {
		subject := fmt.Sprintf("constraint %d", i)
		if c.Z < p.base-eps || c.Z > p.top+eps {
			warns = append(warns, ValidationWarning{
				Subject: subject,
				Message: fmt.Sprintf("elevation %g outside [%g, %g], ignored", c.Z, p.base, p.top),
			})
		}
		if c.Segment().Length() <= eps {
			warns = append(warns, ValidationWarning{Subject: subject, Message: "zero length"})
		}
	}
	var points []v3.Vec
	if p.aux != nil {
		points = p.aux.Points()
	}
	for i, pt := range points {
		if pt.Z < p.base-eps || pt.Z > p.top+eps {
			warns = append(warns, ValidationWarning{
				Subject: fmt.Sprintf("aux point %d", i),
				Message: fmt.Sprintf("elevation %g outside [%g, %g]", pt.Z, p.base, p.top),
			})
		}
	}
	for i, s := range p.surfaces {
		subject := fmt.Sprintf("surface %d", i)
		if s.Elevation <= p.base+eps || s.Elevation >= p.top-eps {
			warns = append(warns, ValidationWarning{
				Subject: subject,
				Message: fmt.Sprintf("elevation %g not strictly between %g and %g", s.Elevation, p.base, p.top),
			})
		}
		if len(s.Outer) >= 3 && len(p.footprint) >= 3 && !geom.PolygonInside(s.Outer, p.footprint, eps) {
			warns = append(warns, ValidationWarning{Subject: subject, Message: "extends beyond the footprint"})
		}
	}
	return warns
}
