package forms

import "regexp"

// MaxPhoneDigits is the length of a Brazilian mobile number with area code
const MaxPhoneDigits = 11

var nonDigitRegexp = regexp.MustCompile(`\D`)

// MaskPhone formats free phone input as (DD) DDDDD-DDDD while it is typed.
// Only the digits of the input matter, so applying it twice changes nothing.
func MaskPhone(input string) string {
	digits := nonDigitRegexp.ReplaceAllString(input, "")
	if len(digits) > MaxPhoneDigits {
		digits = digits[:MaxPhoneDigits]
	}
	if len(digits) < 3 {
		return digits
	}

	area, number := digits[:2], digits[2:]
	if len(number) >= 5 {
		split := len(number) - 4
		number = number[:split] + "-" + number[split:]
	}
	return "(" + area + ") " + number
}
