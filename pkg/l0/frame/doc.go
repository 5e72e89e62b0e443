// Package frame implements the symmetry wire format.
package frame

// A data frame on the wire is
//
//	[0xFF][length][feature][checksum][data[0] ... data[length-1]]
//
// and a status frame is the 2-byte shorthand
//
//	[0xFF][status]
//
// where status >= 0xF0. The start marker 0xFF is only meaningful between
// frames: once a frame has started, the parser is position based and 0xFF is
// an ordinary length/feature/data byte.
//
// The checksum makes length + feature + checksum + Σdata ≡ 0 (mod 256).
// It is a plain additive sum: any single corrupted byte is detected, but
// compensating multi-byte errors (e.g. +1 on one byte and -1 on another) are
// not.
//
// A frame of length N is complete after N+3 bytes following the start
// marker. A length-0 frame is a pure feature trigger and completes on its
// checksum byte.
