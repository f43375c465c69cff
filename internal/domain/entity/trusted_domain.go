package entity

import "time"

// TrustedDomain is an allow-list row granting relaxed mention verification.
// Created by the site owner (or derived from outbound links); immutable.
type TrustedDomain struct {
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}
