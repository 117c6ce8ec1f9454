package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// Result is the outcome of one reconciliation.
type Result struct {
	Section string
	// Negations remove stale lines, in old block order.
	Negations []string
	// Additions assert every desired entity, in desired state order.
	Additions []string
	// Skipped holds old lines whose identity could not be extracted.
	Skipped []*ParseError
	// Failures holds desired entities that could not be reconciled.
	Failures []*ReconciliationError
}

// Commands returns the negations followed by the additions.
func (r *Result) Commands() []string {
	out := make([]string, 0, len(r.Negations)+len(r.Additions))
	out = append(out, r.Negations...)
	return append(out, r.Additions...)
}

// Empty reports whether the result carries no commands.
func (r *Result) Empty() bool {
	return len(r.Negations) == 0 && len(r.Additions) == 0
}

// Err joins the per-entity failures, or returns nil.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Reconcile computes the commands converging old to desired.
//
// Old lines whose identity is absent from the desired set are negated with
// "no " in their original order. Every desired entity is rendered, in
// order, whether or not it already exists. Lines without an identity are
// skipped and entities that fail are reported without stopping the batch.
func Reconcile(old ConfigBlock, desired []properties.Properties, s Strategy) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Section:   s.Section,
		Negations: []string{},
		Additions: []string{},
	}

	keep := make(map[IdentityKey]struct{}, len(desired))
	rendered := make([]string, 0, len(desired))
	for i, entity := range desired {
		key, err := s.EntityIdentity(entity)
		if err != nil {
			res.Failures = append(res.Failures, &ReconciliationError{Section: s.Section, Index: i, Cause: err})
			continue
		}
		// A known identity is kept even when rendering fails, so a broken
		// entity never causes its running line to be removed.
		keep[key] = struct{}{}

		cmd, err := s.Render(entity)
		if err != nil {
			res.Failures = append(res.Failures, &ReconciliationError{Section: s.Section, Index: i, Identity: key, Cause: err})
			continue
		}
		rendered = append(rendered, cmd)
	}

	for i, raw := range old {
		line := strings.TrimSpace(raw)
		if isIgnorable(line) {
			continue
		}
		key, err := s.ExtractIdentity(line)
		if err != nil {
			res.Skipped = append(res.Skipped, &ParseError{Section: s.Section, Index: i, Line: line, Cause: err})
			continue
		}
		if _, ok := keep[key]; !ok {
			res.Negations = append(res.Negations, "no "+line)
		}
	}

	res.Additions = append(res.Additions, rendered...)
	return res, nil
}

// Reconciler runs reconciliations and logs what it skips.
type Reconciler struct {
	logger ports.Logger
}

// NewReconciler creates a Reconciler. A nil logger falls back to the one
// attached to the context, if any.
func NewReconciler(logger ports.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Sync reconciles one section and logs skipped lines and failed entities.
func (r *Reconciler) Sync(ctx context.Context, old ConfigBlock, desired []properties.Properties, s Strategy) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := Reconcile(old, desired, s)
	if err != nil {
		return nil, err
	}

	logger := r.loggerFor(ctx)
	if logger == nil {
		return res, nil
	}

	for _, skipped := range res.Skipped {
		logger.Warn(ctx, "skipping config line without identity",
			ports.F("section", skipped.Section),
			ports.F("line", skipped.Line),
			ports.F("error", skipped.Cause.Error()),
		)
	}
	for _, failure := range res.Failures {
		logger.Error(ctx, "desired entity not reconciled",
			ports.F("section", failure.Section),
			ports.F("index", failure.Index),
			ports.F("identity", failure.Identity.String()),
			ports.F("error", failure.Cause.Error()),
		)
	}
	logger.Debug(ctx, "section reconciled",
		ports.F("section", res.Section),
		ports.F("negations", len(res.Negations)),
		ports.F("additions", len(res.Additions)),
	)

	return res, nil
}

func (r *Reconciler) loggerFor(ctx context.Context) ports.Logger {
	if r != nil && r.logger != nil {
		return r.logger
	}
	return ports.LoggerFromContext(ctx)
}
