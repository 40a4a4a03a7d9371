package booking

// ===============================
// Payment hold status
// ===============================

type HoldStatus string

const (
	HoldNone          HoldStatus = "none"
	HoldAuthorizing   HoldStatus = "authorizing"
	HoldHeld          HoldStatus = "held"
	HoldCaptured      HoldStatus = "captured"
	HoldReleased      HoldStatus = "released"
	HoldCaptureFailed HoldStatus = "capture_failed"
)

// holdSources lista, para cada destino, de onde ele pode ser alcançado.
var holdSources = map[HoldStatus][]HoldStatus{
	HoldAuthorizing:   {HoldNone},
	HoldHeld:          {HoldAuthorizing},
	HoldCaptured:      {HoldHeld},
	HoldCaptureFailed: {HoldHeld},
	HoldReleased:      {HoldAuthorizing, HoldHeld},
}

// HoldSources devolve os estados a partir dos quais to é alcançável.
// A escrita condicionada a esses estados garante que o hold nunca regride.
func HoldSources(to HoldStatus) []HoldStatus {
	return holdSources[to]
}

func CanAdvanceHold(from, to HoldStatus) bool {
	for _, s := range holdSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

func (h HoldStatus) IsFinal() bool {
	return h == HoldCaptured || h == HoldReleased || h == HoldCaptureFailed
}

// NeedsGateway indica um hold que ainda pode movimentar dinheiro.
func (h HoldStatus) NeedsGateway() bool {
	return h == HoldAuthorizing || h == HoldHeld
}
