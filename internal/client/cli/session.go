package cli

import (
	"context"
	"time"
)

func (a *App) Login(ctx context.Context) error {
	if err := a.authService.Login(ctx); err != nil {
		return err
	}
	printlnFn("Login successful")
	return nil
}

// Logout drops the session token. The identity stays on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI asks the server who the current session belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	me, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printlnFn("DID:          ", me.DID)
	printlnFn("Authenticated:", me.Authenticated)
	if me.ExpiresAt > 0 {
		printlnFn("Expires at:   ", time.Unix(me.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

// Status prints the local identity and session state without calling the server.
func (a *App) Status(ctx context.Context) error {
	st, err := a.authService.Status(ctx)
	if err != nil {
		return err
	}
	if !st.HasIdentity {
		printlnFn("Identity: none")
	} else {
		printlnFn("Identity:", st.DID)
	}

	switch {
	case st.Authenticated:
		printlnFn("Session:  active")
	case st.Expired:
		printlnFn("Session:  expired, please login again")
	default:
		printlnFn("Session:  none")
	}
	if !st.ExpiresAt.IsZero() {
		printlnFn("Expires:  ", st.ExpiresAt.UTC().Format(time.RFC3339))
	}
	if m := a.getMode(); m != ModeUnknown {
		printlnFn("Server:   ", string(m))
	}
	return nil
}
