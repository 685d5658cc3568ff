package imitation

// Observer receives engine events for instrumentation.
type Observer interface {
	MessageIngested(stored bool)
	ImitationGenerated(mode string, tokens int)
	UserCacheLookup(hit bool)
}

type nopObserver struct{}

func (nopObserver) MessageIngested(bool) {}
func (nopObserver) ImitationGenerated(string, int) {}
func (nopObserver) UserCacheLookup(bool) {}
