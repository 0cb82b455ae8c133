package shared

// Version of the voice-bridge module, stamped into log fields.
const Version = "0.1.0"
