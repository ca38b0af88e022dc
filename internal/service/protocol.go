// Package service implements the agent-to-agent protocol flows.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	relayotel "github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/fault"
	"github.com/Strob0t/AgentRelay/internal/domain/message"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/port/announce"
	"github.com/Strob0t/AgentRelay/internal/port/capability"
	"github.com/Strob0t/AgentRelay/internal/port/delegate"
	"github.com/Strob0t/AgentRelay/internal/resilience"
)

// DefaultSystemID is the identity the protocol answers from unless
// configured otherwise.
const DefaultSystemID = "a2a_system"

// Flow-specific error codes carried by protocol error envelopes.
const (
	CodeNegotiationError         = "negotiation_error"
	CodeTaskDelegationError      = "task_delegation_error"
	CodeCapabilityDiscoveryError = "capability_discovery_error"
)

// Operation keys used for circuit-breaker bookkeeping.
const (
	OpTaskDelegation      = "task_delegation"
	OpCapabilityDiscovery = "capability_discovery"
)

// Draft holds the caller-supplied fields of a message to be formatted.
// Everything except Type and Sender is optional.
type Draft struct {
	ID           string
	Type         message.Type
	Sender       *agent.Identity
	Recipient    *agent.Identity
	Content      string
	Metadata     *message.Metadata
	Task         *task.Task
	Capabilities *message.Capabilities
	Error        *message.ErrorPayload
}

// Protocol drives the negotiation, task-delegation, capability-discovery,
// and error-envelope flows. Each flow is stateless across invocations; no
// flow lets an internal failure escape as an error.
type Protocol struct {
	self      agent.Identity
	announcer announce.Announcer
	caps      capability.Registry
	coord     *resilience.Coordinator
	metrics   *relayotel.Metrics
	sem       *semaphore.Weighted

	newID func() string    // for testing
	now   func() time.Time // for testing
}

// NewProtocol creates the protocol handler. self is the system identity
// used as the sender of every response; maxDelegations bounds concurrent
// delegated-work executions.
func NewProtocol(self agent.Identity, ann announce.Announcer, caps capability.Registry, coord *resilience.Coordinator, maxDelegations int64) *Protocol {
	if maxDelegations < 1 {
		maxDelegations = 1
	}
	return &Protocol{
		self:      self,
		announcer: ann,
		caps:      caps,
		coord:     coord,
		sem:       semaphore.NewWeighted(maxDelegations),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// SetMetrics attaches metric instruments. Must be called before the
// handler is shared.
func (p *Protocol) SetMetrics(m *relayotel.Metrics) { p.metrics = m }

// FormatMessage fills defaults into a draft and returns the formatted
// message: a generated ID, the current timestamp, empty content, and a
// nil (broadcast) recipient when those are absent. Type and sender have
// no sensible default; missing either is an error.
func (p *Protocol) FormatMessage(ctx context.Context, d Draft) (*message.Message, error) {
	if d.Type == "" {
		return nil, domain.ErrMissingType
	}
	if d.Sender == nil {
		return nil, domain.ErrMissingSender
	}
	return p.format(ctx, d), nil
}

// format builds and announces a message from a draft whose type and
// sender are known to be present.
func (p *Protocol) format(ctx context.Context, d Draft) *message.Message {
	id := d.ID
	if id == "" {
		id = p.newID()
	}

	md := message.Metadata{}
	if d.Metadata != nil {
		md = *d.Metadata
	}
	if md.Timestamp == 0 {
		md.Timestamp = p.now().UnixMilli()
	}

	m := &message.Message{
		ID:           id,
		Type:         d.Type,
		Sender:       d.Sender,
		Recipient:    d.Recipient,
		Content:      d.Content,
		Metadata:     &md,
		Task:         d.Task,
		Capabilities: d.Capabilities,
		Error:        d.Error,
	}

	if err := p.announcer.Announce(ctx, announce.EventMessageFormatted, map[string]any{
		"message_id": m.ID,
		"message":    m,
	}); err != nil {
		slog.Error("message announcement failed", "message_id", m.ID, "error", err)
	}
	if p.metrics != nil {
		p.metrics.MessagesFormatted.Add(ctx, 1)
	}
	return m
}

// ValidateMessage checks a message against the protocol schema. No side
// effects.
func (p *Protocol) ValidateMessage(m *message.Message) message.ValidationResult {
	return message.Validate(m)
}

// HandleNegotiation answers a negotiation request. A valid request gets a
// response message accepting the negotiation; anything else gets an error
// envelope with code negotiation_error. It never returns an error.
func (p *Protocol) HandleNegotiation(ctx context.Context, req *message.Message) *message.Message {
	ctx, span := relayotel.StartFlowSpan(ctx, "negotiation", messageID(req))
	defer span.End()

	if res := message.Validate(req); !res.Valid {
		return p.errorEnvelope(ctx, req, CodeNegotiationError, validationSummary(res))
	}

	content, err := message.EncodeContent(message.NegotiationOutcome{Accepted: true})
	if err != nil {
		return p.errorEnvelope(ctx, req, CodeNegotiationError, fmt.Sprintf("encode outcome: %v", err))
	}

	return p.format(ctx, Draft{
		Type:      message.TypeResponse,
		Sender:    &p.self,
		Recipient: req.Sender,
		Content:   content,
		Metadata:  &message.Metadata{CorrelationID: req.CorrelationID()},
	})
}

// HandleTaskDelegation performs a delegated unit of work through the
// supplied executor and reports the outcome as a task result. The result
// status is the caller-visible signal; no failure escapes as an error.
func (p *Protocol) HandleTaskDelegation(ctx context.Context, t *task.Task, exec delegate.Executor) task.Result {
	taskID := ""
	if t != nil {
		taskID = t.ID
	}

	ctx, span := relayotel.StartDelegationSpan(ctx, taskID)
	defer span.End()

	if reason := delegationPrecondition(t, exec); reason != "" {
		return p.failDelegation(ctx, taskID, reason)
	}

	// Fail fast while the delegation circuit is open instead of piling
	// retries onto a failing executor.
	if p.coord.IsCircuitOpen(ctx, OpTaskDelegation) {
		return p.failDelegation(ctx, taskID, "task delegation rejected: "+domain.ErrCircuitOpen.Error())
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.coord.HandleError(ctx, fault.NewDetails(err, fault.Context{Operation: OpTaskDelegation}), resilience.Options{})
		return p.failDelegation(ctx, taskID, fmt.Sprintf("acquire delegation slot: %v", err))
	}
	defer p.sem.Release(1)

	output, err := exec.Execute(ctx, *t)
	if err != nil {
		p.coord.HandleError(ctx, fault.NewDetails(err, fault.Context{Operation: OpTaskDelegation}), resilience.Options{})
		return p.failDelegation(ctx, taskID, err.Error())
	}

	p.coord.RecordSuccess(ctx, OpTaskDelegation)
	return task.Result{
		TaskID:      taskID,
		Status:      task.StatusCompleted,
		Output:      output,
		CompletedBy: &p.self,
		CompletedAt: p.now().UnixMilli(),
	}
}

// HandleCapabilityDiscovery answers a discovery request with the
// currently advertised capabilities. Discovery is broadcast-style: only
// the sender must be well-formed, a recipient is not required.
func (p *Protocol) HandleCapabilityDiscovery(ctx context.Context, req *message.Message) *message.Message {
	ctx, span := relayotel.StartFlowSpan(ctx, "capability_discovery", messageID(req))
	defer span.End()

	if req == nil || req.Sender == nil || req.Sender.ID == "" || req.Sender.Name == "" {
		return p.errorEnvelope(ctx, req, CodeCapabilityDiscoveryError, "discovery request sender is malformed")
	}

	caps, err := p.caps.List(ctx)
	if err != nil {
		p.coord.HandleError(ctx, fault.NewDetails(err, fault.Context{Operation: OpCapabilityDiscovery}), resilience.Options{})
		return p.errorEnvelope(ctx, req, CodeCapabilityDiscoveryError, fmt.Sprintf("list capabilities: %v", err))
	}
	if caps == nil {
		caps = []message.Capability{}
	}

	content, err := message.EncodeContent(caps)
	if err != nil {
		return p.errorEnvelope(ctx, req, CodeCapabilityDiscoveryError, fmt.Sprintf("encode capabilities: %v", err))
	}

	return p.format(ctx, Draft{
		Type:      message.TypeCapabilityResponse,
		Sender:    &p.self,
		Recipient: req.Sender,
		Content:   content,
		Metadata:  &message.Metadata{CorrelationID: req.CorrelationID()},
	})
}

// HandleError wraps an arbitrary error payload into a broadcast error
// envelope any interested listener may observe.
func (p *Protocol) HandleError(ctx context.Context, e *message.ErrorPayload) *message.Message {
	if e == nil {
		e = &message.ErrorPayload{Code: string(fault.CodeUnknownError)}
	}
	return p.format(ctx, Draft{
		Type:   message.TypeError,
		Sender: &p.self,
		Error:  e,
	})
}

// errorEnvelope builds a flow error message addressed back to the
// originating sender, or broadcast when no sender is determinable.
func (p *Protocol) errorEnvelope(ctx context.Context, req *message.Message, code, msg string) *message.Message {
	var recipient *agent.Identity
	correlation := ""
	if req != nil {
		recipient = req.Sender
		correlation = req.CorrelationID()
	}

	if p.metrics != nil {
		p.metrics.ProtocolErrors.Add(ctx, 1)
	}

	return p.format(ctx, Draft{
		Type:      message.TypeError,
		Sender:    &p.self,
		Recipient: recipient,
		Metadata:  &message.Metadata{CorrelationID: correlation},
		Error:     &message.ErrorPayload{Code: code, Message: msg},
	})
}

// failDelegation reports a failed delegation without raising.
func (p *Protocol) failDelegation(ctx context.Context, taskID, reason string) task.Result {
	if p.metrics != nil {
		p.metrics.ProtocolErrors.Add(ctx, 1)
	}
	return task.Result{
		TaskID: taskID,
		Status: task.StatusFailed,
		Error:  &task.Error{Code: CodeTaskDelegationError, Message: reason},
	}
}

// delegationPrecondition returns a reason string when the delegation
// cannot even be attempted.
func delegationPrecondition(t *task.Task, exec delegate.Executor) string {
	switch {
	case t == nil:
		return "task is required"
	case t.ID == "":
		return "task id is required"
	case t.Description == "":
		return "task description is required"
	case t.DelegatedBy == nil || t.DelegatedBy.ID == "":
		return "task delegator is required"
	case exec == nil:
		return "delegated-work executor is required"
	}
	return ""
}

func messageID(m *message.Message) string {
	if m == nil {
		return ""
	}
	return m.ID
}

// validationSummary flattens a validation result into one error message.
func validationSummary(res message.ValidationResult) string {
	parts := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}
