package model

import "fmt"

// Target identifies an invocable unit: a method-like signature on a declaring
// type. It is the cache key for attribute resolution, so it must stay a plain
// comparable value. The interception layer is expected to hand in the concrete
// implementing signature, not an interface or proxy stand-in.
type Target struct {
	TypeID      string
	SignatureID string
}

func NewTarget(typeID, signatureID string) Target {
	return Target{TypeID: typeID, SignatureID: signatureID}
}

func (t Target) String() string {
	return fmt.Sprintf("%s#%s", t.TypeID, t.SignatureID)
}
