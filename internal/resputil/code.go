package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	InvalidCredentials ErrorCode = 40106

	// User is not allowed to mutate the resource
	UserNotAllowed ErrorCode = 40301

	// Unknown resource id
	ResourceNotFound ErrorCode = 40401

	// Resource lifecycle state rejects the mutation
	InvalidResourceState ErrorCode = 40901

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
