// Package notify implements the outbound notification backends used by the
// action executor: SMTP email for resume links, Twilio SMS for owner
// alerts, a rate limiting decorator and an in-memory Recorder for tests and
// local runs.
package notify
