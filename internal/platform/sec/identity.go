// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the authenticated principal attached to a request by the
// session guard. It carries no secret material.
type Identity struct {
	AccountID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
