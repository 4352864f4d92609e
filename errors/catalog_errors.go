// errors/catalog_errors.go
package errors

import "errors"

var (
	ErrInvalidDeclaration  = errors.New("invalid policy declaration")
	ErrDeclarationNotFound = errors.New("policy declaration not found")
	ErrDatabaseOperation   = errors.New("database operation failed")
	ErrUnauthorized        = errors.New("unauthorized")
)
