// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pinentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/passprompt/lib/clock"
	"github.com/bureau-foundation/passprompt/lib/secret"
)

// Request describes the secret being asked for.
type Request struct {
	// Prompt labels the input field ("Master Password"). A colon is
	// appended when shown by the agent.
	Prompt string

	// Error is shown above the input when non-empty, typically the
	// reason a previous attempt failed.
	Error string

	// Description explains what the secret is for.
	Description string
}

// FallbackPrompter reads a secret without the agent. It follows the
// same contract as Prompter.Prompt: a nil buffer with a nil error means
// no secret was provided.
type FallbackPrompter interface {
	PromptSecret(prompt, errorMessage, description string) (*secret.Buffer, error)
}

// AgentError reports an agent that exited with a status that is neither
// a user cancellation nor a missing program. There is nothing sensible
// to retry; callers normally report it and exit.
type AgentError struct {
	Program string
	Status  ExitStatus
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("there was an unspecified problem with %s (%s)", e.Program, e.Status)
}

// Prompter acquires secrets, preferring the agent and falling back to
// the terminal when the agent is disabled or missing.
type Prompter struct {
	// Program is the agent executable.
	Program string

	// Title is sent with SETTITLE. Empty sends the bare command.
	Title string

	// Disabled skips the agent entirely.
	Disabled bool

	// GracePeriod is the length of each agent shutdown step. Zero
	// means one second.
	GracePeriod time.Duration

	// Options are offered to the agent after configuration. Rejected
	// options are ignored.
	Options []Option

	// Fallback reads the secret when the agent cannot be used.
	Fallback FallbackPrompter

	// Clock times agent shutdown. Nil means clock.Real().
	Clock clock.Clock

	// Logger receives protocol and lifecycle events. Secrets are never
	// logged. Nil discards them.
	Logger *slog.Logger
}

// Prompt asks for a secret. It returns:
//   - the secret, which the caller must Close
//   - (nil, nil) when the user cancelled or entered nothing
//   - an error for setup failures, for an agent that failed with an
//     unexpected status (*AgentError), or for a cancelled ctx
//
// A missing agent is handled by the fallback and is invisible to the
// caller.
func (p *Prompter) Prompt(ctx context.Context, request Request) (*secret.Buffer, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if p.Disabled {
		logger.Debug("pinentry disabled, prompting on the terminal")
		return p.fallback(request)
	}

	agent, err := Spawn(ctx, SpawnConfig{
		Program:     p.Program,
		GracePeriod: p.GracePeriod,
		Clock:       p.Clock,
		Logger:      logger,
	})
	if errors.Is(err, ErrAgentNotFound) {
		logger.Debug("pinentry unavailable, prompting on the terminal", "error", err)
		return p.fallback(request)
	}
	if err != nil {
		return nil, err
	}

	conversation := newSession(agent.responses, agent.requests, logger)
	result, err := conversation.converse(p.Title, request, p.Options)
	if err == nil {
		conversation.bye()
		conversation.close()
		agent.Shutdown()
		return result, nil
	}

	conversation.close()
	status := agent.Shutdown()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !endedEarly(err) {
		return nil, err
	}

	logger.Debug("pinentry session ended early", "error", err, "status", status.String())
	switch {
	case status.Code == 0 || status.Signaled():
		// Cancelled inside the agent, or stopped by shutdown after it
		// stopped answering.
		return nil, nil
	case status.Code == ExitAgentMissing:
		return p.fallback(request)
	default:
		return nil, &AgentError{Program: p.Program, Status: status}
	}
}

// Promptf is Prompt with the description built from a format string.
func (p *Prompter) Promptf(ctx context.Context, prompt, errorMessage, descriptionFormat string, args ...any) (*secret.Buffer, error) {
	return p.Prompt(ctx, Request{
		Prompt:      prompt,
		Error:       errorMessage,
		Description: fmt.Sprintf(descriptionFormat, args...),
	})
}

func (p *Prompter) fallback(request Request) (*secret.Buffer, error) {
	if p.Fallback == nil {
		return nil, errors.New("pinentry: agent unavailable and no fallback prompt configured")
	}
	return p.Fallback.PromptSecret(request.Prompt, request.Error, request.Description)
}
