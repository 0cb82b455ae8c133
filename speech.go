package voicebridge

import "time"

// Delay between the assistant finishing speech and the mic reopening in
// continuous mode, so the tail of the assistant's audio is not captured.
const micUnmuteDelay = 300 * time.Millisecond

// assistantAudioStarted closes the capture gate the moment any assistant
// audio signal arrives. A pending unmute is cancelled so the gate cannot
// flicker open mid-utterance.
func (b *Bridge) assistantAudioStarted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unmuteTimer != nil {
		b.unmuteTimer.Stop()
		b.unmuteTimer = nil
	}
	b.speaking = true
	if b.gate != nil {
		b.gate.Close()
	}
}

// assistantAudioStopped clears the speaking flag. In push-to-talk mode the
// gate stays closed until an explicit UnmuteMic; in continuous mode it
// reopens after micUnmuteDelay unless the assistant starts speaking again
// first.
func (b *Bridge) assistantAudioStopped() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speaking = false
	if b.pushToTalk || b.gate == nil {
		return
	}
	if b.unmuteTimer != nil {
		b.unmuteTimer.Stop()
	}
	b.unmuteTimer = time.AfterFunc(b.unmuteDelay, func() {
		b.mu.Lock()
		gate := b.gate
		fire := !b.speaking
		b.unmuteTimer = nil
		b.mu.Unlock()
		if fire && gate != nil {
			gate.Open()
		}
	})
}

// userSpeechStarted marks the beginning of a new user turn: the assistant is
// no longer considered speaking and the tool budget resets.
func (b *Bridge) userSpeechStarted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speaking = false
	b.toolTurns = 0
}

func (b *Bridge) resetToolTurns() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toolTurns = 0
}

// MuteMic closes the capture gate without touching the connection.
func (b *Bridge) MuteMic() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unmuteTimer != nil {
		b.unmuteTimer.Stop()
		b.unmuteTimer = nil
	}
	if b.gate != nil {
		b.gate.Close()
	}
}

// UnmuteMic reopens the capture gate. This is the only way out of mute in
// push-to-talk mode.
func (b *Bridge) UnmuteMic() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unmuteTimer != nil {
		b.unmuteTimer.Stop()
		b.unmuteTimer = nil
	}
	if b.gate != nil {
		b.gate.Open()
	}
}
