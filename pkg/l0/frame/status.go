package frame

import (
	"fmt"
	"strconv"
)

// Status is the code carried by a 2-byte status frame.
type Status byte

// Status codes.
const (
	StatusDebugOn       Status = 0xF0
	StatusDebugOff      Status = 0xF1
	StatusPowerUp       Status = 0xF2
	StatusPowerDown     Status = 0xF3
	StatusResetHard     Status = 0xF4
	StatusResetSoft     Status = 0xF5
	StatusEEPROMErase   Status = 0xF6
	StatusDefaultsReset Status = 0xF7
	StatusAux1          Status = 0xF8
	StatusAux2          Status = 0xF9
	StatusAux3          Status = 0xFA

	// HELO is the keep-alive handshake, always answered with ACK.
	HELO Status = 0xFB
	ACK  Status = 0xFC
	NACK Status = 0xFD
	FAIL Status = 0xFE
)

// StatusMin is the smallest byte treated as a status code in the
// length position.
const StatusMin byte = 0xF0

var statusNames = map[Status]string{
	StatusDebugOn:       "DEBUG_ON",
	StatusDebugOff:      "DEBUG_OFF",
	StatusPowerUp:       "POWER_UP",
	StatusPowerDown:     "POWER_DOWN",
	StatusResetHard:     "RESET_HARD",
	StatusResetSoft:     "RESET_SOFT",
	StatusEEPROMErase:   "EEPROM_ERASE",
	StatusDefaultsReset: "DEFAULTS_RESET",
	StatusAux1:          "AUX1",
	StatusAux2:          "AUX2",
	StatusAux3:          "AUX3",
	HELO:                "HELO",
	ACK:                 "ACK",
	NACK:                "NACK",
	FAIL:                "FAIL",
}

// IsValid tells if the code is in the status range.
func (s Status) IsValid() bool {
	return byte(s) >= StatusMin
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(0x%02x)", byte(s))
}

// ParseStatus accepts a status name (case sensitive, as returned by String)
// or a numeric code in the status range.
func ParseStatus(str string) (Status, error) {
	for code, name := range statusNames {
		if name == str {
			return code, nil
		}
	}
	n, err := strconv.ParseUint(str, 0, 8)
	if err != nil || !Status(n).IsValid() {
		return 0, fmt.Errorf("invalid status %q", str)
	}
	return Status(n), nil
}

// StatusFrame encodes a status frame.
func StatusFrame(s Status) []byte {
	return []byte{Start, byte(s)}
}
