// # Realtime Voice Session Bridge
//
// Package voicebridge manages one end-to-end realtime voice session between
// a CRM client and the OpenAI Realtime API: it mints an ephemeral credential
// through the CRM backend, captures the microphone, negotiates a WebRTC peer
// connection and data channel, relays inbound model events to the caller,
// executes model-requested tool calls through a backend proxy, and tears
// everything down deterministically on error or explicit disconnect.
package voicebridge
