package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aisha-crm/voice-bridge/shared"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/driver"
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"go.uber.org/zap"
)

const (
	captureSampleRate = 48000
	captureChannels   = 1
	captureSampleSize = 16
)

// Supported reports whether a microphone driver is available. Probed once
// when a bridge is constructed.
func Supported() bool {
	return len(driver.GetManager().Query(driver.FilterAudioRecorder())) > 0
}

// Capture owns the microphone stream for one session.
type Capture struct {
	stream  mediadevices.MediaStream
	track   mediadevices.Track
	latency time.Duration
}

// NewMicrophoneCapture opens the default microphone with an Opus encoder.
func NewMicrophoneCapture() (*Capture, error) {
	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("creating opus params: %w", err)
	}
	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Audio: func(c *mediadevices.MediaTrackConstraints) {
			c.SampleRate = prop.Int(captureSampleRate)
			c.ChannelCount = prop.Int(captureChannels)
			c.SampleSize = prop.Int(captureSampleSize)
		},
		Codec: mediadevices.NewCodecSelector(
			mediadevices.WithAudioEncoders(&opusParams),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("getting microphone stream: %w", err)
	}
	tracks := stream.GetAudioTracks()
	if len(tracks) == 0 {
		return nil, errors.New("no audio track found in microphone stream")
	}
	return &Capture{
		stream:  stream,
		track:   tracks[0],
		latency: time.Duration(opusParams.Latency),
	}, nil
}

func (c *Capture) Stop() {
	for _, track := range c.stream.GetTracks() {
		_ = track.Close()
	}
}

// Pump reads encoded frames from the microphone and writes them to the local
// track for as long as ctx lives. Frames captured while the gate is closed
// are released without being written, so the assistant never hears itself.
func (c *Capture) Pump(ctx context.Context, logger shared.LoggerAdapter, local *webrtc.TrackLocalStaticSample, gate *Gate) {
	reader, err := c.track.NewEncodedReader(local.Codec().MimeType)
	if err != nil {
		logger.Error("creating microphone reader", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		buf, release, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				release()
				return
			}
			logger.Error("reading from microphone", err)
			release()
			continue
		}
		if buf.Samples == 0 || !gate.IsOpen() {
			release()
			continue
		}
		err = local.WriteSample(media.Sample{
			Data:     buf.Data[:],
			Duration: c.latency,
		})
		release()
		if err != nil {
			logger.Error("writing sample to local track", err, zap.Int("samples", buf.Samples))
		}
	}
}
