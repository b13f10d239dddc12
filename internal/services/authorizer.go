package services

import (
	"context"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Access is the kind of operation being authorized.
type Access int

const (
	Read Access = iota
	Write
)

func (a Access) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

// Transactor runs fn inside one database transaction. Repository calls made
// with the ctx passed to fn join it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BandResolver maps a resource id to the id of the band owning it.
type BandResolver func(ctx context.Context, id string) (string, error)

// Authorizer checks that an actor may touch a band. Every service resolves
// ownership through it.
type Authorizer struct {
	bands band.Repository
}

// NewAuthorizer creates an authorizer
func NewAuthorizer(bands band.Repository) *Authorizer {
	return &Authorizer{bands: bands}
}

// Authorize returns the band when actor may access it.
//
// Owners may read and write their own bands. Members may only read the band
// they belong to.
func (a *Authorizer) Authorize(ctx context.Context, actor auth.Actor, bandID string, access Access) (*band.Band, error) {
	if actor == nil {
		metrics.RecordAccessDecision("anonymous", "unauthenticated")
		return nil, errors.Unauthorized("Not authenticated")
	}

	b, err := a.bands.GetByID(ctx, bandID)
	if err != nil {
		if errors.IsNotFound(err) {
			metrics.RecordAccessDecision(actor.Kind(), "missing")
		}
		return nil, err
	}

	if !allowed(actor, b, access) {
		metrics.RecordAccessDecision(actor.Kind(), "forbidden")
		return nil, errors.Forbidden("Not authorized")
	}

	metrics.RecordAccessDecision(actor.Kind(), "granted")
	return b, nil
}

// AuthorizeResource resolves the band of resource id and authorizes it.
// A missing resource is reported by the resolver, usually as NotFound.
func (a *Authorizer) AuthorizeResource(ctx context.Context, actor auth.Actor, resolve BandResolver, id string, access Access) (*band.Band, error) {
	if actor == nil {
		metrics.RecordAccessDecision("anonymous", "unauthenticated")
		return nil, errors.Unauthorized("Not authenticated")
	}

	bandID, err := resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Authorize(ctx, actor, bandID, access)
}

// fetch loads a band-owned record with get and authorizes access to the band
// bandOf reports. The authorized band is returned alongside the record.
func fetch[T any](ctx context.Context, a *Authorizer, actor auth.Actor, access Access, id string,
	get func(context.Context, string) (T, error), bandOf func(T) string) (T, *band.Band, error) {
	var rec T
	b, err := a.AuthorizeResource(ctx, actor, func(ctx context.Context, id string) (string, error) {
		r, err := get(ctx, id)
		if err != nil {
			return "", err
		}
		rec = r
		return bandOf(r), nil
	}, id, access)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return rec, b, nil
}

func allowed(actor auth.Actor, b *band.Band, access Access) bool {
	switch a := actor.(type) {
	case auth.Owner:
		return a.UserID == b.OwnerID
	case auth.Member:
		return access == Read && a.BandID == b.ID
	}
	return false
}

// quiet turns the errors queries must hide into an empty result. Access
// denials and missing records read the same as nothing at all.
func quiet(err error) error {
	if errors.IsAccessDenied(err) || errors.IsNotFound(err) {
		return nil
	}
	return err
}

func requireOwner(actor auth.Actor) (int64, error) {
	if actor == nil {
		return 0, errors.Unauthorized("Not authenticated")
	}
	id, ok := auth.OwnerID(actor)
	if !ok {
		return 0, errors.Forbidden("Not authorized")
	}
	return id, nil
}

func required(field string) error {
	return errors.ValidationError("Validation failed", []patch.FieldError{{Field: field, Message: field + " is required"}})
}

func validationError[E any](problems []E) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.ValidationError("Validation failed", problems)
}
