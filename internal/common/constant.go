// Package common contains shared constants and sentinel errors used across
// hireledger components.
package common

import "time"

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// EscrowValidity is how long a second part stays retrievable after its
// activation time.
const EscrowValidity = 90 * 24 * time.Hour
