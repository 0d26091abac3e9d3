package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTwilioSMS_Send(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	sms := NewTwilioSMS("AC123", "secret", "+15550000", func(o *TwilioOptions) {
		o.BaseURL = srv.URL + "/"
		o.HTTPClient = srv.Client()
	})
	require.NoError(t, sms.SendSMS(context.Background(), "+15550100", "hello"))
	assert.Equal(t, "+15550100", got.Get("To"))
	assert.Equal(t, "+15550000", got.Get("From"))
	assert.Equal(t, "hello", got.Get("Body"))
}

func TestTwilioSMS_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sms := NewTwilioSMS("AC123", "secret", "+15550000", func(o *TwilioOptions) { o.BaseURL = srv.URL })
	err := sms.SendSMS(context.Background(), "+1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid number")
}

func TestTwilioSMS_Validation(t *testing.T) {
	sms := NewTwilioSMS("AC123", "secret", "+15550000")
	assert.Error(t, sms.SendSMS(context.Background(), "", "hello"))
	assert.Error(t, sms.SendSMS(context.Background(), "+1", ""))
}

func TestTwilioSMS_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	sms := NewTwilioSMS("AC123", "secret", "+15550000", func(o *TwilioOptions) { o.BaseURL = srv.URL })
	err := sms.SendSMS(ctx, "+1", "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMTPEmail_Validation(t *testing.T) {
	assert.Error(t, NewSMTPEmail("localhost:25", "me@example.com").SendEmail(context.Background(), "", "s", "b"))
	assert.Error(t, NewSMTPEmail("no-port", "me@example.com").SendEmail(context.Background(), "a@b.c", "s", "b"))
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	msg := string(buildMessage("me@example.com", "you@example.com\r\nBcc: evil@example.com", "Resume\nlink", "line1\nline2", time.Unix(0, 0)))
	assert.Contains(t, msg, "To: you@example.com Bcc: evil@example.com\r\n")
	assert.Contains(t, msg, "Subject: Resume link\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.True(t, strings.HasSuffix(msg, "line1\r\nline2\r\n"))
}

func TestRateLimitedSMS_PerRecipient(t *testing.T) {
	rec := NewRecorder()
	sms := NewRateLimitedSMS(rec, RateLimitOptions{PerRecipient: rate.Every(time.Hour), PerRecipientBurst: 1})

	require.NoError(t, sms.SendSMS(context.Background(), "+1", "a"))
	err := sms.SendSMS(context.Background(), "+1", "b")
	assert.ErrorIs(t, err, ErrRateLimited)
	require.NoError(t, sms.SendSMS(context.Background(), "+2", "c"))
	assert.Len(t, rec.Messages("sms"), 2)
}

func TestRateLimitedEmail_Global(t *testing.T) {
	rec := NewRecorder()
	email := NewRateLimitedEmail(rec, RateLimitOptions{Global: rate.Every(time.Hour), GlobalBurst: 2})

	require.NoError(t, email.SendEmail(context.Background(), "a@x", "s", "b"))
	require.NoError(t, email.SendEmail(context.Background(), "b@x", "s", "b"))
	assert.ErrorIs(t, email.SendEmail(context.Background(), "c@x", "s", "b"), ErrRateLimited)
	assert.Equal(t, 2, rec.Attempts("email"))
}

func TestDefaultRateLimitOptions(t *testing.T) {
	o := DefaultRateLimitOptions()
	assert.Equal(t, 10, o.GlobalBurst)
	assert.Equal(t, 1, o.PerRecipientBurst)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.FailSMS = errors.New("carrier down")

	require.NoError(t, rec.SendEmail(context.Background(), "a@x", "subj", "body"))
	assert.Error(t, rec.SendSMS(context.Background(), "+1", "msg"))
	require.NoError(t, rec.StoreConfession(context.Background(), "s1", "I use tabs"))

	assert.Len(t, rec.Messages(""), 2)
	assert.Equal(t, "subj", rec.Messages("email")[0].Subject)
	assert.Empty(t, rec.Messages("sms"))
	assert.Equal(t, 1, rec.Attempts("sms"))
	assert.Equal(t, "I use tabs", rec.Messages("confession")[0].Body)
}

func TestRecorder_DelayHonoursCancellation(t *testing.T) {
	rec := &Recorder{Delay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rec.SendEmail(ctx, "a@x", "s", "b"), context.DeadlineExceeded)
}
