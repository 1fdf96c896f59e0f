package services

// Actor identifies who performs a state-machine operation. It is passed
// explicitly into every operation instead of being read from ambient session
// state, so services stay independent of the transport layer.
type Actor struct {
	PlayerID int
	Admin    bool
}
