// Package console drives the execute, connection-test and refresh cycles.
package console

import (
	"context"
	"time"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/log"
	"github.com/lydakis/cmdconsole/internal/response"
	"github.com/rs/zerolog"
)

// Service is the part of the command service the console talks to.
// *api.Client implements it.
type Service interface {
	Health(ctx context.Context, conn config.Connection) (api.Health, error)
	ExecuteCommand(ctx context.Context, conn config.Connection, body command.Body) (*api.Result, error)
	CommandLogs(ctx context.Context, conn config.Connection) ([]activity.Record, error)
	FetchReference(ctx context.Context, conn config.Connection) api.Reference
}

// Outcome is the result of one execute call.
//
// Status is nil until a reply or transport failure is known and 0 for a
// transport failure. Once complete, Err is nil exactly when the call
// succeeded.
type Outcome struct {
	Status    *int                `json:"status,omitempty" yaml:"status,omitempty"`
	Latency   *time.Duration      `json:"-" yaml:"-"`
	Body      any                 `json:"body,omitempty" yaml:"body,omitempty"`
	Raw       []byte              `json:"-" yaml:"-"`
	Err       *response.ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`
	RequestID string              `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// Sent reports whether the call reached the transport.
func (o Outcome) Sent() bool { return o.Status != nil }

// OK reports whether the call completed with a 2xx reply.
func (o Outcome) OK() bool { return o.Status != nil && o.Err == nil }

// LatencyMillis returns the latency in milliseconds, or nil when not measured.
func (o Outcome) LatencyMillis() *float64 {
	if o.Latency == nil {
		return nil
	}
	ms := float64(*o.Latency) / float64(time.Millisecond)
	return &ms
}

// Report is the flat form of an Outcome written by the CLI and MCP surfaces.
type Report struct {
	Status    *int                `json:"status,omitempty" yaml:"status,omitempty"`
	LatencyMS *float64            `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`
	Body      any                 `json:"body,omitempty" yaml:"body,omitempty"`
	Error     *response.ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`
	RequestID string              `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// Report flattens o. A raw non-JSON body is reported as a string.
func (o Outcome) Report() Report {
	body := o.Body
	if raw, ok := body.(response.RawBody); ok {
		body = string(raw)
	}
	return Report{
		Status:    o.Status,
		LatencyMS: o.LatencyMillis(),
		Body:      body,
		Error:     o.Err,
		RequestID: o.RequestID,
	}
}

// Executor runs single operations against a Service. It holds no state
// between calls.
type Executor struct {
	svc Service
	log zerolog.Logger
}

// NewExecutor returns an Executor over svc.
func NewExecutor(svc Service) *Executor {
	return &Executor{svc: svc, log: log.WithComponent("console")}
}

// Execute validates in, then composes, sends and classifies it. A local
// precondition failure returns immediately with Err set and no network call.
func (e *Executor) Execute(ctx context.Context, conn config.Connection, in command.Input, allowed []string) Outcome {
	if info := command.Check(in, allowed); info != nil {
		e.log.Info().Str("error_code", info.Code).Str("mode", string(in.Mode())).Msg("execute rejected locally")
		return Outcome{Err: info}
	}
	return e.send(ctx, conn, in)
}

func (e *Executor) send(ctx context.Context, conn config.Connection, in command.Input) Outcome {
	res, err := e.svc.ExecuteCommand(ctx, conn, command.Compose(in))
	var out Outcome
	if res != nil {
		latency := res.Latency
		out.Latency = &latency
		out.RequestID = res.RequestID
	}
	if err != nil {
		zero := 0
		out.Status = &zero
		out.Err = response.NetworkError(err)
		e.log.Info().Err(err).Str("request_id", out.RequestID).Msg("execute failed")
		return out
	}

	status := res.Status
	out.Status = &status
	out.Body = res.Body
	out.Raw = res.Raw
	out.Err = response.Interpret(res.Status, res.Body)
	if out.Err != nil {
		e.log.Info().
			Int("status", status).
			Str("error_code", out.Err.Code).
			Str("request_id", out.RequestID).
			Msg("execute classified error")
	}
	return out
}

// ProbeState is the connection test state.
type ProbeState string

const (
	ProbeIdle    ProbeState = "idle"
	ProbeLoading ProbeState = "loading"
	ProbeSuccess ProbeState = "success"
	ProbeError   ProbeState = "error"
)

// Probe is the result of a connection test.
type Probe struct {
	State   ProbeState `json:"state" yaml:"state"`
	Message string     `json:"message" yaml:"message"`
}

// TestConnection calls /health. The message is the reported status on
// success and the failure text otherwise.
func (e *Executor) TestConnection(ctx context.Context, conn config.Connection) Probe {
	h, err := e.svc.Health(ctx, conn)
	if err != nil {
		return Probe{State: ProbeError, Message: err.Error()}
	}
	return Probe{State: ProbeSuccess, Message: h.Status}
}

// FetchLogs returns the most recent execution records.
func (e *Executor) FetchLogs(ctx context.Context, conn config.Connection) ([]activity.Record, error) {
	return e.svc.CommandLogs(ctx, conn)
}

// FetchReference returns the picker lists, empty on failure.
func (e *Executor) FetchReference(ctx context.Context, conn config.Connection) api.Reference {
	return e.svc.FetchReference(ctx, conn)
}
