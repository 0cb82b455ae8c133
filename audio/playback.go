package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/ebitengine/oto/v3"
	"github.com/hraban/opus"
	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"
)

const (
	playerBufferMs    = 100
	ringBufferSeconds = 2
)

// PlayRemoteTrack decodes the assistant's Opus track and plays it on the
// default output device until ctx is cancelled or the track ends.
func PlayRemoteTrack(ctx context.Context, logger shared.LoggerAdapter, track *webrtc.TrackRemote) {
	codec := track.Codec()
	sampleRate := int(codec.ClockRate)
	channels := int(codec.Channels)
	logger.Info("playing remote audio",
		zap.String("codec", codec.MimeType),
		zap.Int("sampleRate", sampleRate),
		zap.Int("channels", channels),
	)

	decoder, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		logger.Error("creating opus decoder", err)
		return
	}
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   playerBufferMs * time.Millisecond,
	})
	if err != nil {
		logger.Error("creating audio output context", err)
		return
	}

	ring := NewPCMBuffer(ringBufferSeconds * sampleRate * channels * 2)
	pcm := make([]int16, (playerBufferMs*sampleRate/1000)*channels)

	<-ready
	player := otoCtx.NewPlayer(ring)
	player.Play()
	defer func() { _ = player.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		rtp, _, err := track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("reading RTP packet", err)
			}
			return
		}
		if len(rtp.Payload) == 0 {
			continue
		}
		n, err := decoder.Decode(rtp.Payload, pcm)
		if err != nil {
			logger.Error("decoding opus payload", err)
			continue
		}
		samples := pcm[:n*channels]
		out := make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
		}
		if dropped := ring.Write(out); dropped > 0 {
			logger.Warn("playback buffer dropped audio", zap.Int("droppedBytes", dropped))
		}
	}
}
