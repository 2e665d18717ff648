package model

import "time"

// Identity is the stable pseudonym derived from a client certificate:
// the lowercase hex SHA-256 digest of its DER encoding.
type Identity string

// ShortIdentityLen is how many characters of an identity are shown in listings
const ShortIdentityLen = 6

// Short returns the truncated identity used in menus, or "..." when unset
func (id Identity) Short() string {
	if id == "" {
		return "..."
	}
	if len(id) <= ShortIdentityLen {
		return string(id)
	}
	return string(id[:ShortIdentityLen])
}

// LedgerEntry records the first time an identity was seen
type LedgerEntry struct {
	Identity  Identity  `json:"identity"`
	FirstSeen time.Time `json:"first_seen"`
}
