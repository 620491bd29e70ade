package idgen

import "fmt"

// Generator produces string identifiers.
type Generator interface {
	Generate() (string, error)
}

// Generator kinds.
const (
	KindULID      = "ulid"
	KindKSUID     = "ksuid"
	KindSnowflake = "snowflake"
	KindUUID      = "uuid"
	KindNanoID    = "nanoid"
	KindCUID2     = "cuid2"
)

// DefaultEpoch is 2024-01-01T00:00:00Z in unix milliseconds.
const DefaultEpoch int64 = 1704067200000

// New returns the generator for kind. machineID is only used by snowflake.
func New(kind string, machineID int64) (Generator, error) {
	switch kind {
	case KindULID, "":
		return NewULIDGenerator(), nil
	case KindKSUID:
		return NewKSUIDGenerator(), nil
	case KindSnowflake:
		return NewSnowflakeGenerator(machineID, DefaultEpoch)
	case KindUUID:
		return NewUUIDGenerator(), nil
	case KindNanoID:
		return NewNanoIDGenerator(DefaultNanoIDSize, DefaultNanoIDAlphabet)
	case KindCUID2:
		return NewCUID2Generator(DefaultCUID2Length)
	default:
		return nil, fmt.Errorf("unknown id generator: %s", kind)
	}
}

// Sortable reports whether ids of kind sort in creation order.
func Sortable(kind string) bool {
	switch kind {
	case KindULID, KindKSUID, KindSnowflake, "":
		return true
	default:
		return false
	}
}
