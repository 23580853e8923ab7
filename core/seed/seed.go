// Package seed derives stable placeholder marks and attendance from a string key.
//
// The hash is the sum of the Unicode code points of the key. It is
// order-insensitive and trivially reproducible in any language, which keeps
// placeholder values identical across services rendering the same student.
// Keys are built as "usn|subject" for marks and "usn|subject|att" for attendance.
package seed

const (
	MinMark  = 24
	MaxMark  = 40
	markSpan = MaxMark - MinMark + 1

	MinHeld  = 18
	MaxHeld  = 22
	heldSpan = MaxHeld - MinHeld + 1

	MinAttended  = 12
	MaxAttended  = 19
	attendedSpan = MaxAttended - MinAttended + 1
)

// Checksum returns the sum of the code points of key.
func Checksum(key string) int {
	var sum int
	for _, r := range key {
		sum += int(r)
	}
	return sum
}

// Bounded maps key into [lo, hi]. offset shifts the checksum so a single key
// can produce several decorrelated values.
func Bounded(key string, offset, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + (Checksum(key)+offset)%(hi-lo+1)
}

func MarksKey(usn, subject string) string {
	return usn + "|" + subject
}

func AttendanceKey(usn, subject string) string {
	return usn + "|" + subject + "|att"
}

// Marks returns the three placeholder internal scores of a subject, each in [MinMark, MaxMark].
func Marks(usn, subject string) (internal1, internal2, internal3 int) {
	key := MarksKey(usn, subject)
	internal1 = Bounded(key, 0, MinMark, MaxMark)
	internal2 = Bounded(key, 7, MinMark, MaxMark)
	internal3 = Bounded(key, 11, MinMark, MaxMark)
	return
}

// Attendance returns placeholder (attended, held) class counts of a subject.
// held is in [MinHeld, MaxHeld] and attended never exceeds held.
func Attendance(usn, subject string) (attended, held int) {
	s := Checksum(AttendanceKey(usn, subject))
	held = MinHeld + s%heldSpan
	attended = MinAttended + (s>>3)%attendedSpan
	if attended > held {
		attended = held
	}
	return
}
