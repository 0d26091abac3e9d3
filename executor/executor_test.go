package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/testutil"
	"github.com/hupe1980/folio/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func resumeAndSMS() core.Plan {
	return core.Plan{Actions: []core.PendingAction{
		{Kind: core.ActionSendResumeLink, Payload: core.ResumeLinkPayload{
			LinkTemplate: "https://cv.example.com/{{.SessionID}}",
			Recipient:    "hm@example.com",
		}},
		{Kind: core.ActionNotifySMS, Payload: core.SMSPayload{Contact: "+15550100", Message: "ping"}},
	}}
}

func newExecutor(rec *notify.Recorder, optFns ...func(o *Options)) *Executor {
	return New(append([]func(o *Options){func(o *Options) {
		o.Email = rec
		o.SMS = rec
		o.Confessions = rec
	}}, optFns...)...)
}

func TestExecute_Success(t *testing.T) {
	rec := notify.NewRecorder()
	state := testutil.NewStateBuilder("s1").Build()

	results := newExecutor(rec).Execute(context.Background(), state, resumeAndSMS())

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, core.StatusExecuted, r.Status, r.Kind)
		assert.True(t, r.Succeeded())
	}
	assert.True(t, state.HasExecuted(core.ActionSendResumeLink))
	assert.True(t, state.HasExecuted(core.ActionNotifySMS))

	mail := rec.Messages("email")
	require.Len(t, mail, 1)
	assert.Equal(t, "hm@example.com", mail[0].To)
	assert.Contains(t, mail[0].Body, "https://cv.example.com/s1")
}

func TestExecute_SkipsDuplicates(t *testing.T) {
	rec := notify.NewRecorder()
	state := testutil.NewStateBuilder("s1").Executed(core.ActionSendResumeLink, core.ActionNotifySMS).Build()

	results := newExecutor(rec).Execute(context.Background(), state, resumeAndSMS())

	for _, r := range results {
		assert.Equal(t, core.StatusSkippedDuplicate, r.Status)
	}
	assert.Zero(t, rec.Attempts("email"))
	assert.Zero(t, rec.Attempts("sms"))
}

func TestExecute_DuplicateWithinPlan(t *testing.T) {
	rec := notify.NewRecorder()
	plan := resumeAndSMS()
	plan.Actions = append(plan.Actions, plan.Actions[1])

	results := newExecutor(rec).Execute(context.Background(), testutil.NewStateBuilder("s").Build(), plan)
	assert.Equal(t, core.StatusSkippedDuplicate, results[2].Status)
	assert.Equal(t, 1, rec.Attempts("sms"))
}

func TestExecute_SMSFailureIsolated(t *testing.T) {
	rec := notify.NewRecorder()
	rec.FailSMS = errors.New("carrier rejected")
	state := testutil.NewStateBuilder("s1").Build()

	plan := core.Plan{Actions: []core.PendingAction{resumeAndSMS().Actions[1], resumeAndSMS().Actions[0]}}
	results := newExecutor(rec).Execute(context.Background(), state, plan)

	require.Len(t, results, 2)
	assert.Equal(t, core.StatusFailed, results[0].Status)
	assert.ErrorIs(t, results[0].Err, core.ErrActionExecutionFailed)
	assert.Contains(t, results[0].Error, "carrier rejected")
	assert.Equal(t, core.StatusExecuted, results[1].Status)
	assert.Equal(t, 1, rec.Attempts("email"))

	assert.False(t, state.HasExecuted(core.ActionNotifySMS))
	assert.True(t, state.HasExecuted(core.ActionSendResumeLink))
}

type panickingSMS struct{}

func (panickingSMS) SendSMS(context.Context, string, string) error { panic("boom") }

func TestExecute_PanicRecovered(t *testing.T) {
	rec := notify.NewRecorder()
	ex := newExecutor(rec, func(o *Options) { o.SMS = panickingSMS{} })

	results := ex.Execute(context.Background(), testutil.NewStateBuilder("s").Build(), resumeAndSMS())
	assert.Equal(t, core.StatusExecuted, results[0].Status)
	assert.Equal(t, core.StatusFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "panic: boom")
}

func TestExecute_DetachedFromCallerCancellation(t *testing.T) {
	rec := notify.NewRecorder()
	rec.Delay = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newExecutor(rec).Execute(ctx, testutil.NewStateBuilder("s").Build(), resumeAndSMS())
	for _, r := range results {
		assert.Equal(t, core.StatusExecuted, r.Status)
	}
}

func TestExecute_ActionTimeout(t *testing.T) {
	rec := notify.NewRecorder()
	rec.Delay = time.Second
	ex := newExecutor(rec, func(o *Options) { o.ActionTimeout = 10 * time.Millisecond })

	results := ex.Execute(context.Background(), testutil.NewStateBuilder("s").Build(), resumeAndSMS())
	for _, r := range results {
		assert.Equal(t, core.StatusFailed, r.Status)
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
}

func TestExecute_BackendsNotConfigured(t *testing.T) {
	results := New().Execute(context.Background(), testutil.NewStateBuilder("s").Build(), resumeAndSMS())
	for _, r := range results {
		assert.Equal(t, core.StatusFailed, r.Status)
		assert.ErrorIs(t, r.Err, core.ErrBackendNotConfigured)
	}
}

func TestExecute_ResumeLinkToOwner(t *testing.T) {
	rec := notify.NewRecorder()
	ex := newExecutor(rec, func(o *Options) { o.OwnerEmail = "me@example.com" })
	plan := core.Plan{Actions: []core.PendingAction{{
		Kind:    core.ActionSendResumeLink,
		Payload: core.ResumeLinkPayload{LinkTemplate: "https://cv.example.com"},
	}}}

	results := ex.Execute(context.Background(), testutil.NewStateBuilder("s9").Build(), plan)
	require.Equal(t, core.StatusExecuted, results[0].Status)
	assert.Equal(t, "me@example.com", rec.Messages("email")[0].To)
	assert.Contains(t, rec.Messages("email")[0].Body, "session s9")

	noOwner := newExecutor(notify.NewRecorder()).Execute(context.Background(), testutil.NewStateBuilder("s").Build(), plan)
	assert.Equal(t, core.StatusFailed, noOwner[0].Status)
}

func TestExecute_ContentActions(t *testing.T) {
	state := testutil.NewStateBuilder("s").Build()
	plan := core.Plan{Actions: []core.PendingAction{
		{Kind: core.ActionOfferResume},
		{Kind: core.ActionEnrichTopic, Payload: core.TopicPayload{Topic: "coffee"}},
	}}

	results := New().Execute(context.Background(), state, plan)
	assert.Equal(t, core.StatusExecuted, results[0].Status)
	assert.Equal(t, core.StatusExecuted, results[1].Status)
	assert.True(t, state.HasExecuted(core.ActionOfferResume))
	assert.False(t, state.HasExecuted(core.ActionEnrichTopic))
}

func TestExecute_LogConfession(t *testing.T) {
	rec := notify.NewRecorder()
	plan := core.Plan{Actions: []core.PendingAction{{
		Kind:    core.ActionLogConfession,
		Payload: core.ConfessionPayload{Text: "I never write tests"},
	}}}
	state := testutil.NewStateBuilder("s").Build()
	results := newExecutor(rec).Execute(context.Background(), state, plan)
	assert.Equal(t, core.StatusExecuted, results[0].Status)
	assert.Equal(t, "I never write tests", rec.Messages("confession")[0].Body)
	assert.Empty(t, state.ExecutedKinds())
}

func TestExecute_WrongPayload(t *testing.T) {
	plan := core.Plan{Actions: []core.PendingAction{{Kind: core.ActionNotifySMS, Payload: core.TopicPayload{Topic: "x"}}}}
	results := newExecutor(notify.NewRecorder()).Execute(context.Background(), testutil.NewStateBuilder("s").Build(), plan)
	assert.Equal(t, core.StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "unexpected payload")
}
