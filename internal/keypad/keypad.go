// Package keypad models the 16 key hexadecimal CHIP-8 keypad.
package keypad

import (
	"fmt"
	"math/bits"
	"strings"
)

// Count is the number of keys on the keypad.
const Count = 16

// Keys is a snapshot of the pressed keys, bit n is set when key n is pressed.
type Keys uint16

// Of returns a snapshot with the given keys pressed. Codes above 0xF are ignored.
func Of(codes ...uint8) Keys {
	var k Keys
	for _, code := range codes {
		k = k.Press(code)
	}
	return k
}

// Press returns a copy of the snapshot with the key pressed.
func (k Keys) Press(code uint8) Keys {
	if code >= Count {
		return k
	}
	return k | 1<<code
}

// Release returns a copy of the snapshot with the key released.
func (k Keys) Release(code uint8) Keys {
	if code >= Count {
		return k
	}
	return k &^ (1 << code)
}

// Pressed reports whether the key is pressed.
func (k Keys) Pressed(code uint8) bool {
	return code < Count && k&(1<<code) != 0
}

// Empty reports whether no key is pressed.
func (k Keys) Empty() bool {
	return k == 0
}

// Lowest returns the lowest pressed key code.
func (k Keys) Lowest() (uint8, bool) {
	if k == 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros16(uint16(k))), true
}

// String returns the pressed keys as hex digits, for example "[1 A F]".
func (k Keys) String() string {
	var codes []string
	for code := range uint8(Count) {
		if k.Pressed(code) {
			codes = append(codes, fmt.Sprintf("%X", code))
		}
	}
	return "[" + strings.Join(codes, " ") + "]"
}

// Layout maps host keyboard characters to keypad codes.
type Layout map[rune]uint8

// DefaultLayout is the conventional QWERTY mapping of the COSMAC VIP keypad:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultLayout = Layout{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Lookup returns the keypad code for a host character, ignoring case.
func (l Layout) Lookup(r rune) (uint8, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	code, ok := l[r]
	return code, ok
}
