// Package authz resolves whether a principal may act on a collection or an item inside it.
//
// Resolution runs an ordered chain of steps. Each step returns Allow, Deny or Defer and the
// first non-Defer outcome wins; a chain that defers to the end denies.
package authz

import (
	"context"
	"errors"
	"fmt"

	"caseguard/internal/model"
	"caseguard/pkg/apierror"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func (a Action) valid() bool {
	switch a {
	case ActionView, ActionCreate, ActionEdit, ActionDelete:
		return true
	default:
		return false
	}
}

type Scope string

const (
	ScopeCollection Scope = "collection"
	ScopeItem       Scope = "item"
)

type Outcome int

const (
	Defer Outcome = iota
	Allow
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "defer"
	}
}

// CreateRule selects which collection capability gates creating an item in a collection.
type CreateRule string

const (
	CreateRequiresView   CreateRule = "view"
	CreateRequiresCreate CreateRule = "create"
)

type Request struct {
	ActorID      int64
	Role         model.Role
	Action       Action
	Scope        Scope
	CollectionID int64
	ItemID       int64
}

type Decision struct {
	Outcome Outcome
	Step    string
}

type GrantLookup interface {
	FindCollectionGrant(ctx context.Context, userID int64, collectionID int64) (*model.CollectionGrant, error)
	FindItemGrant(ctx context.Context, userID int64, itemID int64) (*model.ItemGrant, error)
}

type ItemLookup interface {
	FindItem(ctx context.Context, id int64) (model.Item, error)
}

// Observer receives every final decision; metrics hook in here.
type Observer interface {
	ObserveAuthz(action string, outcome string, step string)
}

// Step is one tier of the resolution chain.
type Step interface {
	Name() string
	Resolve(ctx context.Context, ev *Evaluation) (Outcome, error)
}

type Engine struct {
	steps      []Step
	grants     GrantLookup
	items      ItemLookup
	createRule CreateRule
	observer   Observer
}

type Option func(*Engine)

func WithCreateRule(rule CreateRule) Option {
	return func(e *Engine) {
		if rule == CreateRequiresCreate || rule == CreateRequiresView {
			e.createRule = rule
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(grants GrantLookup, items ItemLookup, opts ...Option) *Engine {
	e := &Engine{
		grants:     grants,
		items:      items,
		createRule: CreateRequiresView,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.steps = []Step{
		AdminOverride{},
		CollectionGrantCheck{createRule: e.createRule},
		OwnershipCheck{},
		ItemGrantCheck{},
	}
	return e
}

// Authorize runs the chain. A nil error means allowed; every denial is a typed API error
// (FORBIDDEN, NOT_FOUND or VALIDATION_ERROR). Authorize never writes to storage.
func (e *Engine) Authorize(ctx context.Context, req Request) (Decision, error) {
	if err := validate(req); err != nil {
		e.observe(req, Decision{Outcome: Deny, Step: "validate"})
		return Decision{Outcome: Deny, Step: "validate"}, err
	}

	ev := &Evaluation{Request: req, grants: e.grants, items: e.items}
	for _, step := range e.steps {
		outcome, err := step.Resolve(ctx, ev)
		if err != nil {
			decision := Decision{Outcome: Deny, Step: step.Name()}
			e.observe(req, decision)
			return decision, err
		}

		switch outcome {
		case Allow:
			decision := Decision{Outcome: Allow, Step: step.Name()}
			e.observe(req, decision)
			return decision, nil
		case Deny:
			decision := Decision{Outcome: Deny, Step: step.Name()}
			e.observe(req, decision)
			return decision, apierror.Forbidden(denyMessage(req))
		}
	}

	decision := Decision{Outcome: Deny, Step: "exhausted"}
	e.observe(req, decision)
	return decision, apierror.Forbidden(denyMessage(req))
}

func (e *Engine) observe(req Request, d Decision) {
	if e.observer != nil {
		e.observer.ObserveAuthz(string(req.Action), d.Outcome.String(), d.Step)
	}
}

func validate(req Request) error {
	if !req.Action.valid() {
		return apierror.Validation("unknown action", map[string]any{"action": string(req.Action)})
	}

	switch req.Scope {
	case ScopeCollection:
		if req.CollectionID <= 0 {
			return apierror.Validation("collection id is required", map[string]any{"field": "collectionId"})
		}
	case ScopeItem:
		if req.ItemID <= 0 {
			return apierror.Validation("item id is required", map[string]any{"field": "itemId"})
		}
		if req.Action == ActionCreate {
			return apierror.Validation("create applies to a collection, not an item", nil)
		}
	default:
		return apierror.Validation("unknown resource scope", map[string]any{"scope": string(req.Scope)})
	}

	if req.ActorID <= 0 {
		return apierror.Unauthorized("authentication required")
	}
	return nil
}

func denyMessage(req Request) string {
	return fmt.Sprintf("insufficient permissions to %s this %s", req.Action, req.Scope)
}

// Evaluation carries one request through the chain and memoizes lookups.
type Evaluation struct {
	Request

	grants GrantLookup
	items  ItemLookup

	item       *model.Item
	itemLoaded bool
}

// Item loads the target item once. A missing item, or one outside the requested
// collection, is NOT_FOUND.
func (ev *Evaluation) Item(ctx context.Context) (*model.Item, error) {
	if ev.itemLoaded {
		return ev.item, nil
	}

	item, err := ev.items.FindItem(ctx, ev.ItemID)
	if errors.Is(err, model.ErrItemNotFound) {
		return nil, apierror.NotFound("item not found", map[string]any{"itemId": ev.ItemID})
	}
	if err != nil {
		return nil, fmt.Errorf("resolve item: %w", err)
	}
	if ev.CollectionID > 0 && item.CollectionID != ev.CollectionID {
		return nil, apierror.NotFound("item not found", map[string]any{"itemId": ev.ItemID})
	}

	ev.item = &item
	ev.itemLoaded = true
	return ev.item, nil
}

// TargetCollection is the collection whose grant gates the request. The item is read
// only when the request names no collection.
func (ev *Evaluation) TargetCollection(ctx context.Context) (int64, error) {
	if ev.Scope == ScopeCollection || ev.CollectionID > 0 {
		return ev.CollectionID, nil
	}
	item, err := ev.Item(ctx)
	if err != nil {
		return 0, err
	}
	return item.CollectionID, nil
}
