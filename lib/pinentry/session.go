// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pinentry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/passprompt/lib/assuan"
	"github.com/bureau-foundation/passprompt/lib/secret"
)

var (
	// errAgentDead means the agent's response stream failed: it closed,
	// returned an error, or a request could not be written.
	errAgentDead = errors.New("pinentry: agent stopped responding")

	// errCommandRejected means the agent answered a mandatory
	// configuration command with something other than OK.
	errCommandRejected = errors.New("pinentry: command rejected")
)

// endedEarly reports whether err ends the conversation on the dead-agent
// path, where the agent's exit status decides the outcome.
func endedEarly(err error) bool {
	return errors.Is(err, errAgentDead) || errors.Is(err, errCommandRejected)
}

// session is one conversation with an agent. Exactly one command is
// outstanding at a time: every send is followed by at most one read of
// its response before the next send.
type session struct {
	reader *secret.LineReader
	writer *bufio.Writer
	logger *slog.Logger

	// line is the most recent response without its line ending. It
	// points into reader's protected memory, may hold secret data, and
	// is wiped before the next read and on close.
	line []byte

	// newBuffer allocates the buffer that collects escaped secret data.
	newBuffer func(size int) (*secret.Buffer, error)
}

func newSession(responses io.Reader, requests io.Writer, logger *slog.Logger) *session {
	return &session{
		reader:    secret.NewLineReader(responses),
		writer:    bufio.NewWriter(requests),
		logger:    logger,
		newBuffer: secret.New,
	}
}

// converse runs the exchange from greeting to the end of GETPIN. It
// returns the unescaped secret when the agent delivers one, (nil, nil)
// when the user cancels inside the agent, or an error. Errors for which
// endedEarly is true leave the agent's exit status to decide.
func (s *session) converse(title string, request Request, options []Option) (*secret.Buffer, error) {
	if err := s.expectOK("greeting"); err != nil {
		return nil, err
	}

	if err := s.sendChecked(assuan.CommandSetTitle, optional(title)...); err != nil {
		return nil, err
	}

	var prompt []string
	if request.Prompt != "" {
		prompt = []string{request.Prompt + ":"}
	}
	if err := s.sendChecked(assuan.CommandSetPrompt, prompt...); err != nil {
		return nil, err
	}

	if request.Error != "" {
		if err := s.sendChecked(assuan.CommandSetError, request.Error); err != nil {
			return nil, err
		}
	}

	if err := s.sendChecked(assuan.CommandSetDesc, request.Description); err != nil {
		return nil, err
	}

	for _, option := range options {
		if err := s.tryOption(option); err != nil {
			return nil, err
		}
	}

	if err := s.sendUnchecked(assuan.CommandGetPin); err != nil {
		return nil, err
	}

	escaped, err := s.collectSecret()
	if err != nil || escaped == nil {
		return nil, err
	}
	return unescapeSecret(escaped)
}

// collectSecret reads GETPIN responses. Data lines are appended to an
// escaped buffer until OK. Any other line means no secret: the partial
// buffer is wiped and (nil, nil) returned.
func (s *session) collectSecret() (*secret.Buffer, error) {
	escaped, err := s.newBuffer(0)
	if err != nil {
		return nil, err
	}

	for {
		if err := s.readLine(); err != nil {
			escaped.Close()
			return nil, err
		}

		switch kind := assuan.Classify(s.line); kind {
		case assuan.ResponseData:
			if err := escaped.Append(assuan.Payload(s.line)); err != nil {
				escaped.Close()
				return nil, err
			}
		case assuan.ResponseOK:
			return escaped, nil
		default:
			s.logger.Debug("pinentry returned no secret", "response", kind.String())
			escaped.Close()
			return nil, nil
		}
	}
}

// unescapeSecret decodes the escaped secret into a new buffer and wipes
// the escaped one.
func unescapeSecret(escaped *secret.Buffer) (*secret.Buffer, error) {
	defer escaped.Close()

	decoded, err := secret.New(escaped.Len())
	if err != nil {
		return nil, err
	}
	written := assuan.UnescapeInto(decoded.Bytes(), escaped.Bytes())
	decoded.Truncate(written)
	return decoded, nil
}

// sendChecked sends a command and requires an OK response.
func (s *session) sendChecked(keyword string, argument ...string) error {
	if err := s.sendUnchecked(keyword, argument...); err != nil {
		return err
	}
	return s.expectOK(keyword)
}

// sendUnchecked sends a command without reading a response.
func (s *session) sendUnchecked(keyword string, argument ...string) error {
	s.logger.Debug("pinentry request", "command", keyword)
	if _, err := s.writer.Write(assuan.FormatCommand(keyword, argument...)); err != nil {
		return fmt.Errorf("%w: sending %s: %v", errAgentDead, keyword, err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("%w: sending %s: %v", errAgentDead, keyword, err)
	}
	return nil
}

// tryOption sends OPTION name=value when value is non-empty. A rejected
// option is logged and otherwise ignored; only a failed read or write
// ends the session.
func (s *session) tryOption(option Option) error {
	if option.Value == "" {
		return nil
	}
	if err := s.sendUnchecked(assuan.CommandOption, option.Name+"="+option.Value); err != nil {
		return err
	}
	if err := s.readLine(); err != nil {
		return err
	}
	if kind := assuan.Classify(s.line); kind != assuan.ResponseOK {
		s.logger.Debug("pinentry rejected option", "option", option.Name, "response", string(s.line))
	}
	return nil
}

// expectOK reads one response and requires it to be OK.
func (s *session) expectOK(step string) error {
	if err := s.readLine(); err != nil {
		return err
	}
	if assuan.Classify(s.line) != assuan.ResponseOK {
		return fmt.Errorf("%w: %s: %s", errCommandRejected, step, s.line)
	}
	return nil
}

// readLine wipes the previous response and reads the next one. A final
// line without a line ending is accepted; the read after it fails.
func (s *session) readLine() error {
	secret.Zero(s.line)
	s.line = nil

	line, err := s.reader.ReadSlice()
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		secret.Zero(line)
		return fmt.Errorf("%w: reading response: %v", errAgentDead, err)
	}
	s.line = assuan.TrimLineEnding(line)
	return nil
}

// bye tells the agent the conversation is over. No response is awaited,
// and a failure to send changes nothing: shutdown follows either way.
func (s *session) bye() {
	_ = s.sendUnchecked(assuan.CommandBye)
}

// close wipes the last response line and the read buffer, including
// anything the agent sent after it.
func (s *session) close() {
	secret.Zero(s.line)
	s.line = nil
	s.reader.Close()
}

// optional turns an empty argument into no argument.
func optional(argument string) []string {
	if argument == "" {
		return nil
	}
	return []string{argument}
}
