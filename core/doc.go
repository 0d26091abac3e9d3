// Package core provides the foundational domain types and collaborator
// contracts used by the portfolio assistant. It defines the abstractions for:
//
//   - Roles and their static RolePolicy (tone, enrichments, eligible actions)
//   - ConversationState (turn history plus the executed-action set)
//   - EvidenceChunk (ranked retrieval results)
//   - PendingAction (closed set of side-effecting or content actions)
//   - AnalyticsEvent (one record per turn handed to the analytics sink)
//   - Pluggable collaborators: embedder, vector store, notifiers, stores, sinks
//
// The package intentionally keeps implementation concerns (persistence,
// providers, orchestration) out of scope, exposing small interfaces so that
// backends can be swapped at wiring time without touching the engine.
package core
