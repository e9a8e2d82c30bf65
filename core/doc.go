// Package core provides the wire-level domain types of the ADK API server
// protocol and the pure functions operating on them. It defines:
//
//   - Parts (the closed union of content segments) and their codec
//   - Content (role + ordered parts) used for outgoing and incoming turns
//   - Events (one emitted record of a run) with grounding metadata and Actions
//   - Auth configurations requested or exchanged through Actions
//   - Session values and the run request builder
//   - The run response aggregator (text extraction, typed part filters,
//     event-carried errors)
//
// The package performs no I/O. Transport lives in package client, session
// lifecycle tracking in package session.
//
// # Part decoding
//
// Parts carry no discriminant tag on the wire. DecodePart probes the
// identifying field of each variant in a fixed order and the first match wins:
//
//	text, thought, executableCode.code, codeExecutionResult.outcome,
//	fileData.fileUri, inlineData.data, functionCall.name,
//	functionResponse.name, videoMetadata
//
// A JSON null is treated as an absent field. The order is part of the
// package contract; adding a variant appends to it.
package core
