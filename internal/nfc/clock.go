package nfc

import (
	"time"

	"github.com/google/uuid"
)

// Clock stamps rename records.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator names rename records. IDs only need to be unique within one
// history database.
type IDGenerator interface {
	New() string
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }

var (
	_ Clock       = RealClock{}
	_ IDGenerator = UUIDGenerator{}
)
