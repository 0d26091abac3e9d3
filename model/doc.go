// Package model defines the provider-agnostic abstractions used by the answer
// generator to talk to large language models.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Report token usage so analytics can attribute cost per turn
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement Model in sub packages so the
// generator remains decoupled from vendor SDKs.
package model
