package form

import (
	"fmt"
	"strings"
)

// maskDigit marks a digit slot in a mask pattern.  Every other rune is a
// literal copied into the output.
const maskDigit = '9'

// ApplyMask formats the digits of raw into mask.  Literals are emitted only
// while more digits follow, so partial input stays editable:
//
//	ApplyMask("(99) 99999-9999", "1191234")  → "(11) 91234"
//	ApplyMask("999.999.999-99", "12345678901") → "123.456.789-01"
//
// Digits beyond the last slot are dropped.  An empty mask returns raw as is.
func ApplyMask(mask, raw string) string {
	if mask == "" {
		return raw
	}
	digits := []rune(Digits(raw))
	if len(digits) == 0 {
		return ""
	}

	var b strings.Builder
	var pending strings.Builder // literals waiting for the next digit
	next := 0
	for _, r := range mask {
		if next == len(digits) {
			break
		}
		if r != maskDigit {
			pending.WriteRune(r)
			continue
		}
		b.WriteString(pending.String())
		pending.Reset()
		b.WriteRune(digits[next])
		next++
	}
	return b.String()
}

// MaskSlots counts the digit slots in mask.
func MaskSlots(mask string) int { return strings.Count(mask, string(maskDigit)) }

func validateMask(mask string) error {
	if mask == "" {
		return nil
	}
	if MaskSlots(mask) == 0 {
		return fmt.Errorf("mask %q has no digit slots", mask)
	}
	if strings.ContainsAny(mask, "012345678") {
		return fmt.Errorf("mask %q: only '9' may be used as a digit slot", mask)
	}
	return nil
}
