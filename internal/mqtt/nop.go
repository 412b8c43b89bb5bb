package mqtt

// NopPublisher discards everything. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSignal(SignalEvent) error { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) Close() error                    { return nil }
func (NopPublisher) IsConnected() bool               { return false }

var (
	_ Publisher        = NopPublisher{}
	_ Publisher        = (*RealPublisher)(nil)
	_ Publisher        = (*FakePublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
