package rest

import (
	"go.uber.org/zap"
)

type Config struct {
	// Port is the port where the server will listen
	Port int

	// JWTSecret is the HMAC secret shared with the portal's REST layer;
	// handshake credentials are verified against it.
	JWTSecret string

	// JWTHeaderName is the name of the header that carries the credential
	// during the WebSocket handshake.
	JWTHeaderName string

	// PublishKey guards the /publish endpoint. Empty disables the endpoint.
	PublishKey string

	// SendBuffer is the per-connection outbound queue size.
	SendBuffer int

	// AllowedOrigins restricts WebSocket origins. Empty allows any origin.
	AllowedOrigins []string

	Logger *zap.Logger
}
