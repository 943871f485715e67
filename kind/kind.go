// Package kind classifies event kinds into the retention classes the relay
// enforces at ingest.
package kind

// Class is the retention class of an event kind.
type Class int

const (
	// Invalid kinds are rejected outright.
	Invalid Class = iota
	// Regular events are stored permanently.
	Regular
	// Ephemeral events are broadcast but never stored.
	Ephemeral
	// Replaceable events keep only the newest per (pubkey, kind).
	Replaceable
	// Addressable events keep only the newest per (pubkey, kind, d tag).
	Addressable
	// Syncable events are document revisions; all revisions are retained.
	Syncable
	// Purge events delete an entire syncable document.
	Purge
)

// Kind range boundaries.
const (
	ReplaceableMin = 10000
	ReplaceableMax = 19999
	EphemeralMin   = 20000
	EphemeralMax   = 29999
	AddressableMin = 30000
	AddressableMax = 39999
	SyncableMin    = 40000
	SyncableMax    = 49998
	PurgeKind      = 49999
)

// String returns the name of a Class.
func (c Class) String() string {
	switch c {
	case Regular:
		return "regular"
	case Ephemeral:
		return "ephemeral"
	case Replaceable:
		return "replaceable"
	case Addressable:
		return "addressable"
	case Syncable:
		return "syncable"
	case Purge:
		return "purge"
	}
	return "invalid"
}

// Classify maps a kind number to its retention class. Ranges are checked in
// precedence order; anything not matched is Invalid.
func Classify(k int) Class {
	switch {
	case k == 0 || k == 3:
		return Replaceable
	case k >= ReplaceableMin && k <= ReplaceableMax:
		return Replaceable
	case k >= EphemeralMin && k <= EphemeralMax:
		return Ephemeral
	case k >= AddressableMin && k <= AddressableMax:
		return Addressable
	case k == PurgeKind:
		return Purge
	case k >= SyncableMin && k <= SyncableMax:
		return Syncable
	case k == 1 || k == 2 || (k >= 4 && k <= 44) || (k >= 1000 && k <= 9999):
		return Regular
	}
	return Invalid
}

// IsEphemeral returns whether a kind is in the ephemeral range.
func IsEphemeral(k int) bool { return Classify(k) == Ephemeral }

// IsReplaceable returns whether a kind keeps a single event per (pubkey, kind).
func IsReplaceable(k int) bool { return Classify(k) == Replaceable }

// IsAddressable returns whether a kind keeps a single event per
// (pubkey, kind, d tag).
func IsAddressable(k int) bool { return Classify(k) == Addressable }

// IsSyncable returns whether a kind is a syncable document revision.
func IsSyncable(k int) bool { return Classify(k) == Syncable }
