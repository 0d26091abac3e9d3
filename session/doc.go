// Package session provides core.StateStore implementations (in-memory and
// SQLite) and the per-session Locker that serializes turns of one session.
//
// The flow controller holds a session's lock around load, pipeline and save,
// so two concurrent turns of the same session can never both observe an
// action as "not yet executed".
package session
