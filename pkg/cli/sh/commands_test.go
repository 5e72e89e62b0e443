package sh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseByte(t *testing.T) {
	for str, expected := range map[string]byte{
		"0": 0, "255": 255, "0x21": 0x21, "0xFF": 0xff, "0b101": 5, "017": 15,
	} {
		val, err := ParseByte(str)
		require.NoError(t, err, str)
		require.Equal(t, expected, val, str)
	}
	for _, str := range []string{"256", "-1", "x", ""} {
		_, err := ParseByte(str)
		require.Error(t, err, str)
	}
}

func TestParseWord(t *testing.T) {
	val, err := ParseWord("0xBEEF")
	require.NoError(t, err)
	require.Equal(t, uint16(0xbeef), val)
	_, err = ParseWord("65536")
	require.Error(t, err)
}
