// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pinentry acquires a password or PIN from the user through an
// external pinentry program, falling back to a terminal prompt when the
// program is disabled or missing.
//
// [Prompter] is the entry point. Each request spawns one agent
// ([Spawn]) and runs one conversation over its stdin and stdout:
//
//	greeting                          <- OK
//	SETTITLE, SETPROMPT, [SETERROR],
//	SETDESC                           <- OK each, or the session fails
//	OPTION name=value ...             <- OK, or ignored
//	GETPIN                            <- D ... / OK, or ERR (cancelled)
//	BYE
//
// The configuration commands are mandatory and a rejection ends the
// session; options are best effort. When the agent stops answering,
// [Agent.Shutdown] reaps it (escalating to SIGTERM and then SIGKILL)
// and the exit status decides the outcome: 0 or a signal means the
// user cancelled, [ExitAgentMissing] means use the terminal, and
// anything else is an [*AgentError].
//
// Secrets are collected and decoded in [secret.Buffer]s. Every response
// line is wiped before the next is read, and a partially collected
// secret is wiped when the user cancels.
package pinentry
