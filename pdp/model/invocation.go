package model

// Invocation is the per-call data supplied by the interception layer: the
// resolved target plus whatever the expression may want to inspect.
type Invocation struct {
	Target   Target
	Receiver interface{}
	Args     []interface{}
}

// Identity describes the caller on whose behalf an invocation runs.
type Identity struct {
	Subject       string
	Roles         []string
	Authenticated bool
	Claims        map[string]interface{}
}

func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentitySupplier retrieves the caller identity. The decision manager calls
// it at most once per check, and only when a policy attribute is present.
type IdentitySupplier func() Identity

// Anonymous is the identity used when no authentication is available.
var Anonymous = Identity{Subject: "anonymous"}
