package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/metrics"
	"github.com/jafarshop/productvariant/internal/repository"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

const (
	DuplicateFoundMessage      = "A product with the same variant combination already exists in this collection."
	UpstreamUnavailableMessage = "Shopify is unavailable right now. Please try again."
	missingCollectionMessage   = "Product is not part of a collection."
)

// Orchestrator runs the guarded variant save: validate, check for a duplicate, then write.
// It keeps no state between requests; every call walks its own state machine from IDLE.
type Orchestrator struct {
	rules      RuleLookup
	duplicates DuplicateFinder
	writer     MetafieldWriter
	events     repository.AssignmentEventRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewOrchestrator creates a new orchestrator. events and m may be nil.
func NewOrchestrator(rules RuleLookup, duplicates DuplicateFinder, writer MetafieldWriter, events repository.AssignmentEventRepository, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		rules:      rules,
		duplicates: duplicates,
		writer:     writer,
		events:     events,
		metrics:    m,
		logger:     logger,
	}
}

// saveRun tracks one request through the state machine
type saveRun struct {
	state domain.SaveState
	log   *zap.Logger
}

func (r *saveRun) transition(next domain.SaveState) {
	if !r.state.CanTransitionTo(next) {
		// Programming error in the orchestrator; the request still ends in next.
		r.log.Error("Invalid save state transition",
			zap.Error(&apperrors.ErrInvalidStateTransition{From: string(r.state), To: string(next)}))
	}
	r.log.Debug("Save state", zap.String("from", string(r.state)), zap.String("to", string(next)))
	r.state = next
}

// Save validates, checks for a duplicate and writes the required fields of the request's collection.
// Collaborator calls are strictly sequential; a cancelled context stops the run before the next step.
func (o *Orchestrator) Save(ctx context.Context, req domain.SaveRequest) domain.SaveResult {
	run := &saveRun{
		state: domain.SaveStateIdle,
		log: o.logger.With(
			zap.String("product_id", req.ProductID),
			zap.String("collection_handle", req.CollectionHandle),
		),
	}
	result := o.run(ctx, run, req)
	if !run.state.IsTerminal() {
		result = o.unfinished(run)
	}
	result.State = run.state
	result.Outcome = run.state.Outcome()

	o.metrics.RecordSaveOutcome(string(result.Outcome))
	o.recordEvent(ctx, req, result)

	if result.Outcome == domain.OutcomeSucceeded {
		run.log.Info("Saved product variant fields")
	} else {
		run.log.Info("Product variant save rejected",
			zap.String("outcome", string(result.Outcome)),
			zap.Strings("messages", result.Messages),
		)
	}
	return result
}

func (o *Orchestrator) run(ctx context.Context, run *saveRun, req domain.SaveRequest) domain.SaveResult {
	run.transition(domain.SaveStateValidating)
	if err := ctx.Err(); err != nil {
		return o.upstreamFailure(run, err)
	}

	rule, err := o.rules.Rule(req.CollectionHandle)
	if err != nil {
		var unsupported *apperrors.ErrUnsupportedCollection
		if errors.As(err, &unsupported) {
			run.transition(domain.SaveStateValidationFailed)
			return domain.SaveResult{Messages: []string{unsupportedMessage(unsupported)}}
		}
		return o.upstreamFailure(run, err)
	}

	values := make(map[string]string, len(rule.Fields))
	var missing []string
	for _, label := range rule.Fields {
		v := strings.TrimSpace(req.Values[label])
		if v == "" {
			missing = append(missing, label)
			continue
		}
		values[label] = v
	}
	if len(missing) > 0 {
		run.transition(domain.SaveStateValidationFailed)
		messages := make([]string, 0, len(missing))
		for _, label := range missing {
			messages = append(messages, label+" is required.")
		}
		return domain.SaveResult{MissingFields: missing, Messages: messages}
	}
	if req.CollectionID == "" {
		run.transition(domain.SaveStateValidationFailed)
		return domain.SaveResult{Messages: []string{missingCollectionMessage}}
	}

	if err := ctx.Err(); err != nil {
		return o.upstreamFailure(run, err)
	}
	run.transition(domain.SaveStateCheckingDuplicate)

	duplicate, err := o.duplicates.FindDuplicate(ctx, req.ProductID, req.CollectionID, rule.Fields, values)
	if err != nil {
		return o.upstreamFailure(run, err)
	}
	if duplicate {
		run.transition(domain.SaveStateDuplicateFound)
		return domain.SaveResult{Messages: []string{DuplicateFoundMessage}}
	}

	if err := ctx.Err(); err != nil {
		return o.upstreamFailure(run, err)
	}
	run.transition(domain.SaveStateWriting)

	written, err := o.writer.WriteMetafields(ctx, req.ProductID, rule.Fields, values)
	if err != nil {
		return o.upstreamFailure(run, err)
	}
	if !written.OK {
		run.transition(domain.SaveStateWriteFailed)
		messages := make([]string, 0, len(written.Errors))
		for _, fe := range written.Errors {
			messages = append(messages, fe.Message)
		}
		if len(messages) == 0 {
			messages = append(messages, "Shopify rejected the metafield update.")
		}
		return domain.SaveResult{Errors: written.Errors, Messages: messages}
	}

	run.transition(domain.SaveStateSucceeded)
	return domain.SaveResult{Messages: []string{}}
}

// unfinished closes a run that returned before reaching an exit state; the caller sees upstream_unavailable
func (o *Orchestrator) unfinished(run *saveRun) domain.SaveResult {
	run.log.Error("Save ended outside an exit state",
		zap.Error(&apperrors.ErrInvalidStateTransition{From: string(run.state), To: string(domain.SaveStateIdle)}))
	run.state = domain.SaveStateUpstreamUnavailable
	return domain.SaveResult{Messages: []string{UpstreamUnavailableMessage}}
}

func (o *Orchestrator) upstreamFailure(run *saveRun, err error) domain.SaveResult {
	run.transition(domain.SaveStateUpstreamUnavailable)
	run.log.Warn("Save stopped, upstream unavailable", zap.Error(err))

	messages := []string{UpstreamUnavailableMessage}
	var gqlErrs *shopify.GraphQLErrors
	if errors.As(err, &gqlErrs) {
		messages = append(messages, gqlErrs.Messages()...)
	} else {
		messages = append(messages, err.Error())
	}
	return domain.SaveResult{Messages: messages}
}

func (o *Orchestrator) recordEvent(ctx context.Context, req domain.SaveRequest, result domain.SaveResult) {
	if o.events == nil {
		return
	}
	detail := map[string]interface{}{
		"state":    string(result.State),
		"messages": result.Messages,
	}
	if len(result.MissingFields) > 0 {
		detail["missing_fields"] = result.MissingFields
	}
	event := &domain.AssignmentEvent{
		ID:               uuid.New(),
		ProductID:        req.ProductID,
		CollectionHandle: req.CollectionHandle,
		Outcome:          result.Outcome,
		Detail:           detail,
	}
	// Audit failures never change the save result.
	if err := o.events.Create(context.WithoutCancel(ctx), event); err != nil {
		o.logger.Warn("Failed to record assignment event", zap.String("product_id", req.ProductID), zap.Error(err))
	}
}

func unsupportedMessage(err *apperrors.ErrUnsupportedCollection) string {
	if len(err.Supported) == 0 {
		return "This product is not part of a supported collection."
	}
	return "This product is not part of a supported collection. Supported collections: " + strings.Join(err.Supported, ", ") + "."
}
