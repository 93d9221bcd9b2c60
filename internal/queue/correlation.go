package queue

// ResolutionKind tells the caller what to do with a resolved message.
type ResolutionKind int

const (
	// ResolutionOK means both delivery tag and channel were found.
	ResolutionOK ResolutionKind = iota
	// ResolutionSkip means the message was not broker delivered; there is nothing to acknowledge.
	ResolutionSkip
	// ResolutionFail means the delivery tag is present but its channel is not.
	ResolutionFail
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionOK:
		return "ok"
	case ResolutionSkip:
		return "skip"
	case ResolutionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of looking up the delivery correlation of a message.
// DeliveryTag and Channel are valid for ResolutionOK, Err for ResolutionFail.
type Resolution struct {
	Kind        ResolutionKind
	DeliveryTag uint64
	Channel     *ChannelHandle
	Err         error
}

// Resolve reads the delivery tag and channel of msg. action names the channel
// operation being attempted and only shows up in errors.
func Resolve(msg *Message, action string) Resolution {
	if msg == nil || msg.Delivery == nil {
		return Resolution{Kind: ResolutionSkip}
	}

	d := msg.Delivery
	if d.Channel == nil || d.Channel.Acker == nil {
		return Resolution{
			Kind:        ResolutionFail,
			DeliveryTag: d.Tag,
			Err:         &MissingChannelError{Action: action, DeliveryTag: d.Tag},
		}
	}

	return Resolution{
		Kind:        ResolutionOK,
		DeliveryTag: d.Tag,
		Channel:     d.Channel,
	}
}
