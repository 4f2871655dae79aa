package event

import (
	"github.com/cskr/pubsub/v2"

	"btroute/internal/device"
)

// Topic identifies a signal source on the bus.
type Topic uint8

const (
	TopicClassicMedia Topic = iota
	TopicClassicCall
	TopicHearingAid
	TopicLEAudio
	TopicLEHearingAid
	TopicAudioMode
	TopicWiredAudio
	// TopicSync carries queue-flush sentinels, see SignalSync.
	TopicSync
)

// TopicForProfile maps a profile to its bus topic.
func TopicForProfile(p device.Profile) (Topic, bool) {
	switch p {
	case device.ProfileClassicMedia:
		return TopicClassicMedia, true
	case device.ProfileClassicCall:
		return TopicClassicCall, true
	case device.ProfileHearingAid:
		return TopicHearingAid, true
	case device.ProfileLEAudio:
		return TopicLEAudio, true
	case device.ProfileLEHearingAid:
		return TopicLEHearingAid, true
	default:
		return 0, false
	}
}

// Bus broadcasts inbound signals from independent producers to the
// arbitration engine. A subscription over several topics yields a single
// channel, so delivery order across producers is the publication order.
type Bus struct {
	ps *pubsub.PubSub[Topic, Signal]
}

// NewBus creates a bus whose subscription channels buffer up to capacity
// signals.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bus{ps: pubsub.New[Topic, Signal](capacity)}
}

// Publish delivers the signal to subscribers of the topic, blocking until
// every subscriber's channel has accepted it.
func (b *Bus) Publish(topic Topic, sig Signal) {
	b.ps.Pub(sig, topic)
}

// Subscribe returns a channel receiving all signals published to the given
// topics.
func (b *Bus) Subscribe(topics ...Topic) chan Signal {
	return b.ps.Sub(topics...)
}

// Unsubscribe removes the channel's subscriptions and drains it.
func (b *Bus) Unsubscribe(ch chan Signal, topics ...Topic) {
	b.ps.Unsub(ch, topics...)
}

// Shutdown closes every subscription channel.
func (b *Bus) Shutdown() {
	b.ps.Shutdown()
}
