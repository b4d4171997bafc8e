package catalog_constants

// Room codes are numeric strings drawn from [RoomCodeMin, RoomCodeMax].
const RoomCodeMin = 10000
const RoomCodeMax = 99999

// A game counts as multiplayer when its Steam category text contains this marker.
const MultiplayerMarker = "Multi-player"

// Genre assigned to delisted/unresolvable titles so they still get cached.
const DefaultGenre = "Single-player"

// Price bucket labels recognized by the aggregation engine. Any other non-empty
// value is passed through without filtering.
const (
	PriceBucketFree    = "FREE"
	PriceBucketUnder10 = "Under $10"
	PriceBucketUnder40 = "Under $40"
)

const PriceCapUnder10 = 1000 // cents
const PriceCapUnder40 = 4000 // cents
