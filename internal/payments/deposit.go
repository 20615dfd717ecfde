package payments

// DepositOutcome describes how a deposit hold settles after a resolution.
type DepositOutcome struct {
	CaptureCents int64
	ReleaseCents int64
	Release      bool
}

// SettleDeposit derives the deposit outcome from the held amount and the
// amount a resolution captures. The remainder is released whenever the
// capture does not consume the full hold. Inputs are assumed validated
// (0 <= captureCents <= holdCents).
func SettleDeposit(holdCents, captureCents int64) DepositOutcome {
	return DepositOutcome{
		CaptureCents: captureCents,
		ReleaseCents: holdCents - captureCents,
		Release:      captureCents < holdCents,
	}
}
