// Package model defines the provider-agnostic generation capability used by
// every orchestration mode in ensemble.
//
// Core goals:
//   - Keep the contract minimal: a prompt goes in, completion text comes out
//   - Keep request/response shapes transport independent
//   - Classify transient failures so callers can retry with bounded backoff
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (stages, evaluators) remain decoupled from vendor SDKs.
package model
