// Package client is the interactive demo for the Go SDK: a text menu that
// logs in, calls the protected resource and refreshes tokens.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
)

// logoutTimeout bounds the logout sent on the way out, which may run after
// ctx has been cancelled by a signal.
const logoutTimeout = 5 * time.Second

// Menu reads choices from in and writes prompts and results to out.
type Menu struct {
	Session *authsdk.Session
	In      io.Reader
	Out     io.Writer
}

// Run loops until the user exits or input runs out. The session is logged
// out on the way out.
func (m *Menu) Run(ctx context.Context) error {
	lines := bufio.NewScanner(m.In)
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		m.logout(ctx)
	}()

	for {
		m.printMenu()

		choice, ok := m.read(lines)
		if !ok {
			fmt.Fprintln(m.Out, "\nInput closed, exiting...")
			return lines.Err()
		}

		switch choice {
		case "1":
			m.login(ctx, lines)
		case "2":
			m.accessResource(ctx)
		case "3":
			m.refresh(ctx)
		case "4":
			fmt.Fprintln(m.Out, "Exiting...")
			return nil
		case "5":
			m.logout(ctx)
		default:
			fmt.Fprintln(m.Out, "Invalid option. Please try again")
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *Menu) printMenu() {
	state := m.Session.State()

	fmt.Fprintln(m.Out, "\n--- tokengate client ---")
	fmt.Fprintf(m.Out, "Session: %s\n", state)
	fmt.Fprintln(m.Out, "1. Login")
	if state != authsdk.StateUnauthenticated {
		fmt.Fprintln(m.Out, "2. Access protected resource")
	}
	if state == authsdk.StateRefreshable {
		fmt.Fprintln(m.Out, "3. Refresh access token")
	}
	fmt.Fprintln(m.Out, "4. Exit")
	if state != authsdk.StateUnauthenticated {
		fmt.Fprintln(m.Out, "5. Logout")
	}
	fmt.Fprint(m.Out, "Choose an option: ")
}

func (m *Menu) read(lines *bufio.Scanner) (string, bool) {
	if !lines.Scan() {
		return "", false
	}
	return strings.TrimSpace(lines.Text()), true
}

func (m *Menu) login(ctx context.Context, lines *bufio.Scanner) {
	fmt.Fprint(m.Out, "Username: ")
	username, ok := m.read(lines)
	if !ok {
		return
	}
	fmt.Fprint(m.Out, "Password: ")
	password, ok := m.read(lines)
	if !ok {
		return
	}

	if err := m.Session.Login(ctx, username, password); err != nil {
		fmt.Fprintf(m.Out, "Login failed: %s\n", describe(err))
		return
	}
	fmt.Fprintln(m.Out, "Login successful")
}

func (m *Menu) accessResource(ctx context.Context) {
	res, err := m.Session.AccessResource(ctx)
	if err != nil {
		fmt.Fprintf(m.Out, "Failed to access protected resource: %s\n", describe(err))
		if m.Session.State() == authsdk.StateUnauthenticated {
			fmt.Fprintln(m.Out, "Session cleared. Please login again.")
		}
		return
	}
	fmt.Fprintln(m.Out, "Successfully accessed protected resource!")
	fmt.Fprintf(m.Out, "Response: %s (subject=%s, authorities=%s)\n",
		res.Message, res.Subject, strings.Join(res.Authorities, ","))
}

func (m *Menu) refresh(ctx context.Context) {
	if err := m.Session.Refresh(ctx); err != nil {
		fmt.Fprintf(m.Out, "Refresh failed (%d/%d): %s\n",
			m.Session.FailedRefreshAttempts(), authsdk.MaxRefreshAttempts, describe(err))
		if m.Session.State() == authsdk.StateUnauthenticated {
			fmt.Fprintln(m.Out, "Session cleared. Please login again.")
		}
		return
	}
	fmt.Fprintln(m.Out, "Access token refreshed")
}

func (m *Menu) logout(ctx context.Context) {
	if m.Session.State() == authsdk.StateUnauthenticated {
		return
	}
	if err := m.Session.Logout(ctx); err != nil {
		fmt.Fprintf(m.Out, "Logout was not acknowledged by the server: %s\n", describe(err))
	}
	fmt.Fprintln(m.Out, "Logged out")
}

func describe(err error) string {
	var apiErr *authsdk.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Description != "" {
			return fmt.Sprintf("%s (%s)", apiErr.Code, apiErr.Description)
		}
		return apiErr.Code
	case errors.Is(err, authsdk.ErrNotAuthenticated):
		return "not logged in"
	case errors.Is(err, authsdk.ErrNoRefreshToken):
		return "no refresh token held"
	default:
		return err.Error()
	}
}
