package pipeline

// ChannelSink forwards events into a channel. The progress UI reads the
// other end; sends block until it does.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
