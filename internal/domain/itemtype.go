package domain

// ItemType is the discriminator stored with every project item. The set of
// valid values and their nesting rules live in the registry package.
type ItemType string

const (
	TypeBuilding ItemType = "Building"
	TypeFloor    ItemType = "Floor"
	TypeRoom     ItemType = "Room"
	TypeCabinet  ItemType = "Cabinet"
	TypeDevice   ItemType = "Device"
)

func (t ItemType) String() string { return string(t) }
