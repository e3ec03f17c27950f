// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Account Constraints

const (
	// UsernameMinLength and UsernameMaxLength bound the display username.
	UsernameMinLength = 3
	UsernameMaxLength = 30

	// PasswordMinLength is the shortest accepted password, in characters.
	PasswordMinLength = 6

	// PasswordMaxBytes is where bcrypt stops reading input.
	PasswordMaxBytes = 72

	// NameMaxLength bounds first and last names.
	NameMaxLength = 50

	// BioMaxLength bounds the biography.
	BioMaxLength = 500
)

// # Client Messages

// Messages for enumeration-sensitive paths are deliberately generic.
const (
	MessageAccountExists      = "User already exists with this email or username"
	MessageInvalidCredentials = "Invalid credentials"
	MessageInvalidResetToken  = "Invalid or expired token"
	MessageDeliveryFailed     = "Email could not be sent"
	MessageResetRequested     = "If this email is registered, a reset link has been sent."
	MessagePasswordChanged    = "Password changed successfully"
	MessageWrongPassword      = "Current password is incorrect"
)
