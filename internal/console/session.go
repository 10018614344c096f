package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/lydakis/cmdconsole/internal/activity"
	"github.com/lydakis/cmdconsole/internal/api"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/payload"
	"github.com/lydakis/cmdconsole/internal/response"
	"golang.org/x/sync/errgroup"
)

// ExecSlot holds the execute cycle state.
type ExecSlot struct {
	InFlight int
	Outcome  Outcome
}

// LogsState is the activity log fetch state.
type LogsState string

const (
	LogsIdle    LogsState = "idle"
	LogsLoading LogsState = "loading"
	LogsError   LogsState = "error"
)

// LogsSlot holds the activity log fetch state. Records is replaced wholesale
// on every successful fetch.
type LogsSlot struct {
	State   LogsState
	Err     string
	Records []activity.Record
}

// RefSlot holds the picker lists.
type RefSlot struct {
	Loading   bool
	Reference api.Reference
}

// Session is the editable console state plus one slot per operation.
//
// Session is not safe for concurrent use. Begin* methods mutate only their own
// slot and return a call that touches nothing in the Session; the matching
// Finish* writes the call's result back. The interactive console runs the
// calls off the update loop and feeds results back through Finish*.
type Session struct {
	Conn     config.Connection
	Settings *config.Settings

	Mode            command.Mode
	RequestedBy     string
	RawText         string
	FallbackPayload string
	Action          string
	Payload         string

	StatusFilter string
	Search       string

	Probe Probe
	Exec  ExecSlot
	Logs  LogsSlot
	Ref   RefSlot

	exec  *Executor
	store *config.Store
}

// NewSession returns a session over the loaded connection and settings.
// store may be nil, in which case nothing is persisted.
func NewSession(exec *Executor, store *config.Store, conn config.Connection, settings *config.Settings) *Session {
	if settings == nil {
		settings = config.Defaults()
	}
	action := ""
	if len(settings.Actions) > 0 {
		action = settings.Actions[0]
	}
	return &Session{
		Conn:            conn,
		Settings:        settings,
		Mode:            command.ModeNatural,
		RequestedBy:     settings.RequestedBy,
		FallbackPayload: "{}",
		Action:          action,
		Payload:         "{}",
		StatusFilter:    activity.StatusAll,
		Probe:           Probe{State: ProbeIdle},
		Logs:            LogsSlot{State: LogsIdle},
		exec:            exec,
		store:           store,
	}
}

// Input returns the request described by the current fields.
func (s *Session) Input() command.Input {
	if s.Mode == command.ModeDirect {
		return command.Direct{RequestedBy: s.RequestedBy, Action: s.Action, Payload: s.Payload}
	}
	return command.Natural{RequestedBy: s.RequestedBy, RawText: s.RawText, FallbackPayload: s.FallbackPayload}
}

// Preview returns the body the current fields would send.
func (s *Session) Preview() (string, *response.ErrorInfo) {
	return command.Preview(s.Input(), s.Settings.Actions)
}

// VisibleLogs returns the fetched records after the status filter and search.
func (s *Session) VisibleLogs() []activity.Record {
	return activity.Filter(s.Logs.Records, s.StatusFilter, s.Search)
}

// BeginExecute starts an execute cycle. When a local precondition fails the
// outcome is set immediately and the returned call is nil. Otherwise the
// previous outcome is cleared and the call sends a snapshot of the current
// connection and fields.
func (s *Session) BeginExecute() func(context.Context) Outcome {
	in := s.Input()
	if info := command.Check(in, s.Settings.Actions); info != nil {
		s.Exec.Outcome = Outcome{Err: info}
		return nil
	}

	s.Exec.Outcome = Outcome{}
	s.Exec.InFlight++
	conn := s.Conn.Clone()
	exec := s.exec
	return func(ctx context.Context) Outcome {
		return exec.send(ctx, conn, in)
	}
}

// FinishExecute records the outcome of a call started by BeginExecute. With
// overlapping calls the last one to finish wins.
func (s *Session) FinishExecute(o Outcome) {
	if s.Exec.InFlight > 0 {
		s.Exec.InFlight--
	}
	s.Exec.Outcome = o
}

// BeginTest starts a connection test.
func (s *Session) BeginTest() func(context.Context) Probe {
	s.Probe = Probe{State: ProbeLoading}
	conn := s.Conn.Clone()
	exec := s.exec
	return func(ctx context.Context) Probe {
		return exec.TestConnection(ctx, conn)
	}
}

// FinishTest records a connection test result.
func (s *Session) FinishTest(p Probe) {
	s.Probe = p
}

// Refresh is the joined result of the logs and reference fetches.
type Refresh struct {
	Records   []activity.Record
	LogsErr   error
	Reference api.Reference
}

// BeginRefresh starts the activity log and reference fetches. The returned
// call runs both concurrently and returns once both are done.
func (s *Session) BeginRefresh() func(context.Context) Refresh {
	s.Logs.State = LogsLoading
	s.Logs.Err = ""
	s.Ref.Loading = true
	conn := s.Conn.Clone()
	exec := s.exec
	return func(ctx context.Context) Refresh {
		var r Refresh
		var g errgroup.Group
		g.Go(func() error {
			r.Records, r.LogsErr = exec.FetchLogs(ctx, conn)
			return nil
		})
		g.Go(func() error {
			r.Reference = exec.FetchReference(ctx, conn)
			return nil
		})
		_ = g.Wait()
		return r
	}
}

// FinishRefresh records a refresh into the logs and reference slots. A failed
// logs fetch keeps the previous records.
func (s *Session) FinishRefresh(r Refresh) {
	s.finishLogs(r.Records, r.LogsErr)
	s.finishReference(r.Reference)
}

func (s *Session) finishLogs(records []activity.Record, err error) {
	if err != nil {
		s.Logs.State = LogsError
		s.Logs.Err = err.Error()
		return
	}
	s.Logs = LogsSlot{State: LogsIdle, Records: records}
}

func (s *Session) finishReference(ref api.Reference) {
	s.Ref = RefSlot{Reference: ref}
}

// Execute runs an execute cycle to completion.
func (s *Session) Execute(ctx context.Context) Outcome {
	if call := s.BeginExecute(); call != nil {
		s.FinishExecute(call(ctx))
	}
	return s.Exec.Outcome
}

// Test runs a connection test to completion.
func (s *Session) Test(ctx context.Context) Probe {
	s.FinishTest(s.BeginTest()(ctx))
	return s.Probe
}

// RefreshNow runs a refresh to completion.
func (s *Session) RefreshNow(ctx context.Context) {
	s.FinishRefresh(s.BeginRefresh()(ctx))
}

// SetBaseURL changes the connection target and persists it.
func (s *Session) SetBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("base URL is empty")
	}
	if err := config.ValidateBaseURL(raw); err != nil {
		return err
	}
	s.Conn.BaseURL = raw
	return s.persistConnection()
}

// SetAuthMode changes the auth mode and persists it. Calls already begun are
// unaffected.
func (s *Session) SetAuthMode(raw string) error {
	mode, err := config.ParseAuthMode(raw)
	if err != nil {
		return err
	}
	s.Conn.AuthMode = mode
	return s.persistConnection()
}

// SetHeaderName changes the credential header name and persists it.
func (s *Session) SetHeaderName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("header name is empty")
	}
	if err := config.ValidateHeaderName(name); err != nil {
		return err
	}
	s.Conn.HeaderName = name
	return s.persistConnection()
}

// SetCredential replaces the in-memory credential. It reaches the session
// store only when remembering is on.
func (s *Session) SetCredential(value string) error {
	s.Conn.Credential = strings.TrimSpace(value)
	return s.persistCredential()
}

// SetRemember toggles whether the credential is kept in the session store.
func (s *Session) SetRemember(remember bool) error {
	s.Conn.RememberCredential = remember
	return s.persistCredential()
}

// SetRequestedBy changes the requested_by value and persists it.
func (s *Session) SetRequestedBy(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("requested_by is empty")
	}
	s.RequestedBy = value
	s.Settings.RequestedBy = value
	if s.store == nil {
		return nil
	}
	_, err := s.store.Update(func(settings *config.Settings) {
		settings.RequestedBy = value
	})
	return err
}

// SetAction selects the direct-mode action.
func (s *Session) SetAction(action string) error {
	action = strings.TrimSpace(action)
	if !s.Settings.AllowsAction(action) {
		return fmt.Errorf("action %q is not allowed (choose from %s)", action, strings.Join(s.Settings.Actions, ", "))
	}
	s.Action = action
	return nil
}

// SetStatusFilter changes the activity status filter.
func (s *Session) SetStatusFilter(status string) error {
	status = strings.TrimSpace(status)
	if !activity.ValidStatus(status) {
		return fmt.Errorf("unknown status %q (choose from %s)", status, strings.Join(activity.Statuses, ", "))
	}
	s.StatusFilter = status
	return nil
}

// SetPayloadField sets a string field on the direct-mode payload. The payload
// is left untouched when it is not an object.
func (s *Session) SetPayloadField(field, value string) error {
	text, err := payload.SetField(s.Payload, field, value)
	if err != nil {
		return err
	}
	s.Payload = text
	return nil
}

func (s *Session) persistConnection() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.Conn)
}

func (s *Session) persistCredential() error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveCredential(s.Conn)
}
