// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by data/migrations.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table           string
	ID              string
	Username        string
	UsernameKey     string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Bio             string
	AvatarURL       string
	IsEmailVerified string
	ResetDigest     string
	ResetExpiresAt  string
	CreatedAt       string
	UpdatedAt       string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:           "users.account",
	ID:              "id",
	Username:        "username",
	UsernameKey:     "usernamekey",
	Email:           "email",
	Password:        "passwordhash",
	FirstName:       "firstname",
	LastName:        "lastname",
	Bio:             "bio",
	AvatarURL:       "avatarurl",
	IsEmailVerified: "isemailverified",
	ResetDigest:     "resetdigest",
	ResetExpiresAt:  "resetexpiresat",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns the columns read back into an account, in scan order.
// UsernameKey is write-only and is not included.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.FirstName, t.LastName,
		t.Bio, t.AvatarURL, t.IsEmailVerified, t.ResetDigest, t.ResetExpiresAt,
		t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList joins Columns for use in a SELECT or RETURNING clause.
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
