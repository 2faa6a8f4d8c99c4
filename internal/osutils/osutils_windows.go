//go:build windows

// Package osutils holds small platform queries used before installing the key hook.
package osutils

import (
	"golang.org/x/sys/windows"
)

// IsAdmin reports whether the process token is a member of the built-in
// Administrators group. A low-level keyboard hook in an unelevated process
// does not receive keys aimed at elevated windows.
func IsAdmin() bool {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	var admins *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&admins,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(admins)

	member, err := token.IsMember(admins)
	return err == nil && member
}
