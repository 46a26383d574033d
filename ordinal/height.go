package ordinal

// Height arithmetic: the issuance schedule. Subsidy halves every
// SubsidyHalvingInterval blocks until it reaches zero; the ordinal
// issued first at a given height is its starting ordinal, the
// cumulative sum of every prior height's subsidy.

const (
	// SubsidyHalvingInterval is the number of blocks between halvings.
	SubsidyHalvingInterval uint64 = 210_000

	// InitialSubsidy is the block reward before any halving, in satoshis.
	InitialSubsidy uint64 = 50 * 100_000_000

	// MaxHalvings bounds the schedule: past this many halvings the
	// subsidy is permanently zero.
	MaxHalvings uint64 = 64
)

// Height is a block height.
type Height uint64

// Subsidy returns the block subsidy issued at this height.
func (h Height) Subsidy() uint64 {
	halvings := uint64(h) / SubsidyHalvingInterval
	if halvings >= MaxHalvings {
		return 0
	}
	return InitialSubsidy >> halvings
}

// StartingOrdinal returns the first ordinal issued at this height: the
// cumulative supply issued by every height strictly below it.
func (h Height) StartingOrdinal() uint64 {
	height := uint64(h)
	halvings := height / SubsidyHalvingInterval
	var start uint64

	for epoch := uint64(0); epoch < halvings; epoch++ {
		start += SubsidyHalvingInterval * subsidyAtHalving(epoch)
	}
	start += (height % SubsidyHalvingInterval) * subsidyAtHalving(halvings)
	return start
}

func subsidyAtHalving(halvings uint64) uint64 {
	if halvings >= MaxHalvings {
		return 0
	}
	return InitialSubsidy >> halvings
}

// IsCommonOrdinal reports whether ordinal o is common, i.e. it is not the
// first ordinal issued at any height. Every ordinal that starts a
// height's subsidy range is uncommon; every other ordinal is common.
//
// Only the binary common/uncommon distinction is consumed by the
// indexing core (see spec §3); it does not need to resolve the finer
// rarity hierarchy (rare/epic/legendary/mythic) that some ordinal
// schemes layer on top of it.
func IsCommonOrdinal(o uint64) bool {
	return !Height(heightOf(o)).IsStartingOrdinal(o)
}

// IsStartingOrdinal reports whether o is exactly the starting ordinal of
// height h.
func (h Height) IsStartingOrdinal(o uint64) bool {
	return h.StartingOrdinal() == o
}

// heightOf returns the height at which ordinal o was issued. Used only
// by IsCommonOrdinal; the indexer itself always knows the height an
// ordinal range originates from and should prefer IsStartingOrdinal on
// that known height instead of this search. Bounded by MaxHalvings
// epochs, not by height, so it stays cheap at any supply.
func heightOf(o uint64) uint64 {
	var supplied uint64
	for epoch := uint64(0); epoch < MaxHalvings; epoch++ {
		subsidy := subsidyAtHalving(epoch)
		epochSupply := SubsidyHalvingInterval * subsidy
		if o < supplied+epochSupply {
			return epoch*SubsidyHalvingInterval + (o-supplied)/subsidy
		}
		supplied += epochSupply
	}
	return MaxHalvings * SubsidyHalvingInterval
}
