package mfa

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var deviceNameAdjectives = []string{
	"amber", "brisk", "calm", "daring", "eager", "fuzzy",
	"gentle", "hasty", "ivory", "jolly", "keen", "lucid",
}

var deviceNameNouns = []string{
	"falcon", "otter", "maple", "comet", "harbor", "ridge",
	"lantern", "meadow", "pebble", "quill", "sparrow", "thicket",
}

// GenerateDeviceName returns a readable default label for a security
// key when the user does not provide one.
func GenerateDeviceName() string {
	adjective := deviceNameAdjectives[randomIndex(len(deviceNameAdjectives))]
	noun := deviceNameNouns[randomIndex(len(deviceNameNouns))]
	return fmt.Sprintf("%s-%s", adjective, noun)
}

func randomIndex(length int) int {
	index, err := rand.Int(rand.Reader, big.NewInt(int64(length)))
	if err != nil {
		return 0
	}
	return int(index.Int64())
}
