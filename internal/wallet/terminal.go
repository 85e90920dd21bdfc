package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalApprover prompts on the controlling terminal.
type TerminalApprover struct {
	In  io.Reader
	Out io.Writer

	// AssumeYes approves connect and signature prompts without asking.
	AssumeYes bool

	reader *bufio.Reader
}

func NewTerminalApprover(assumeYes bool) *TerminalApprover {
	return &TerminalApprover{In: os.Stdin, Out: os.Stderr, AssumeYes: assumeYes}
}

func (a *TerminalApprover) Passphrase(_ context.Context, prompt string) ([]byte, error) {
	_, _ = fmt.Fprint(a.Out, prompt)

	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(a.Out)
		if err != nil {
			return nil, fmt.Errorf("passphrase input failed: %w", err)
		}
		return pw, nil
	}

	line, err := a.readLine()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (a *TerminalApprover) ApproveConnect(ctx context.Context, account string) (bool, error) {
	return a.confirm(ctx, fmt.Sprintf("Connect wallet %s? [y/N]: ", account))
}

func (a *TerminalApprover) ApproveSignature(ctx context.Context, req SignRequest) (bool, error) {
	return a.confirm(ctx, fmt.Sprintf("Sign transaction as %s (%s)? [y/N]: ", req.Account, req.Summary))
}

func (a *TerminalApprover) confirm(_ context.Context, msg string) (bool, error) {
	if a.AssumeYes {
		return true, nil
	}
	_, _ = fmt.Fprint(a.Out, msg)
	line, err := a.readLine()
	if err != nil {
		return false, err
	}
	s := strings.ToLower(line)
	return s == "y" || s == "yes", nil
}

func (a *TerminalApprover) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
