package notify

import "errors"

var (
	ErrDeliveryFailed = errors.New("notify: delivery failed on all channels")
	ErrNoChannels     = errors.New("notify: at least one channel is required")
	ErrInvalidChannel = errors.New("notify: channel requires a name and a sender")
)
