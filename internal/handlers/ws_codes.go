// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game socket.
const (
	BadSubprotocolError  = 3000 // Client connected without the sevens subprotocol.
	UnsupportedDataError = 3001 // Client sent a binary frame.
)
