// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Owns the single shared WebSocket connection to the alert backend
//   - Sends application-level ping frames and tracks pong liveness
//   - Reconnects with bounded exponential backoff while subscribers exist
//   - Classifies inbound frames and emits alert/ticker events in order
package connection
