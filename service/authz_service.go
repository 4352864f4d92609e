package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prevet-io/prevet/audit"
	"github.com/prevet-io/prevet/catalog"
	"github.com/prevet-io/prevet/pdp/engine"
	pdp_model "github.com/prevet-io/prevet/pdp/model"
	"github.com/prevet-io/prevet/util"
)

// Decision outcomes as reported on the API surface.
const (
	OutcomeGranted   = "granted"
	OutcomeDenied    = "denied"
	OutcomeAbstained = "abstained"
)

// CheckRequest describes one invocation to authorize.
type CheckRequest struct {
	TargetType string        `json:"target_type" binding:"required"`
	Signature  string        `json:"signature" binding:"required"`
	Args       []interface{} `json:"args"`
}

// CheckResponse is the outcome of one authorization check. Granted is unset
// when the engine abstained.
type CheckResponse struct {
	DecisionID string    `json:"decision_id"`
	Outcome    string    `json:"outcome"`
	Granted    *bool     `json:"granted,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// DeclarationStore persists policy declarations across instances.
type DeclarationStore interface {
	FetchDeclarations(ctx context.Context) ([]catalog.Declaration, error)
	UpsertDeclaration(ctx context.Context, decl catalog.Declaration) error
}

type IAuthzService interface {
	Check(ctx context.Context, req CheckRequest, supplier pdp_model.IdentitySupplier) (*CheckResponse, error)
	RegisterDeclaration(ctx context.Context, decl catalog.Declaration) error
	ListDeclarations(ctx context.Context) ([]catalog.Declaration, error)
}

type AuthzService struct {
	manager  *engine.DecisionManager
	catalog  *catalog.Catalog
	store    DeclarationStore
	eventBus *util.EventBus
}

var _ IAuthzService = (*AuthzService)(nil)

// NewAuthzService wires the decision manager to the API surface. store may be
// nil when declarations live only in process.
func NewAuthzService(
	manager *engine.DecisionManager,
	cat *catalog.Catalog,
	store DeclarationStore,
	eventBus *util.EventBus,
) *AuthzService {
	return &AuthzService{
		manager:  manager,
		catalog:  cat,
		store:    store,
		eventBus: eventBus,
	}
}

// Check runs one authorization check and publishes the outcome as a decision
// event. The identity supplier stays lazy: it is only invoked if the engine
// actually needs the caller identity, and at most once.
func (s *AuthzService) Check(ctx context.Context, req CheckRequest, supplier pdp_model.IdentitySupplier) (*CheckResponse, error) {
	invocation := pdp_model.Invocation{
		Target: pdp_model.NewTarget(req.TargetType, req.Signature),
		Args:   req.Args,
	}

	// Record the identity if the manager resolves it, without resolving it
	// ourselves.
	var resolved *pdp_model.Identity
	recording := func() pdp_model.Identity {
		identity := supplier()
		resolved = &identity
		return identity
	}

	decision, err := s.manager.Check(recording, invocation)
	if err != nil {
		return nil, err
	}

	resp := &CheckResponse{
		DecisionID: uuid.NewString(),
		CheckedAt:  time.Now().UTC(),
	}
	if decision == nil {
		resp.Outcome = OutcomeAbstained
	} else {
		granted := decision.Granted
		resp.Granted = &granted
		if granted {
			resp.Outcome = OutcomeGranted
		} else {
			resp.Outcome = OutcomeDenied
		}
	}

	s.publishDecision(ctx, invocation, resolved, resp)
	return resp, nil
}

func (s *AuthzService) publishDecision(ctx context.Context, invocation pdp_model.Invocation, identity *pdp_model.Identity, resp *CheckResponse) {
	record := audit.DecisionRecord{
		ID:         resp.DecisionID,
		Timestamp:  resp.CheckedAt,
		TargetType: invocation.Target.TypeID,
		Signature:  invocation.Target.SignatureID,
		Outcome:    resp.Outcome,
	}
	if identity != nil {
		record.Subject = identity.Subject
	}
	if raw, ok := s.catalog.MethodDeclaration(invocation.Target); ok {
		record.Expression = raw
	} else if raw, ok := s.catalog.TypeDeclaration(invocation.Target.TypeID); ok {
		record.Expression = raw
	}
	s.eventBus.Publish(ctx, util.EventDecisionChecked, record)
}

// RegisterDeclaration adds a declaration to the catalog and, when a store is
// configured, persists it. Targets already resolved by the attribute registry
// keep their cached attribute: declarations are expected to be registered at
// setup time.
func (s *AuthzService) RegisterDeclaration(ctx context.Context, decl catalog.Declaration) error {
	if err := s.catalog.Register(decl); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.UpsertDeclaration(ctx, decl); err != nil {
			return err
		}
	}
	s.eventBus.Publish(ctx, util.EventDeclarationRegistered, decl)
	return nil
}

// ListDeclarations returns every declaration currently in the catalog.
func (s *AuthzService) ListDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	return s.catalog.Declarations(), nil
}

// LoadPersistedDeclarations pulls declarations from the store into the
// catalog, typically at startup before warmup.
func (s *AuthzService) LoadPersistedDeclarations(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	decls, err := s.store.FetchDeclarations(ctx)
	if err != nil {
		return err
	}
	for _, decl := range decls {
		if err := s.catalog.Register(decl); err != nil {
			return err
		}
	}
	return nil
}
