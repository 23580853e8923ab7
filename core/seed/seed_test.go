package seed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{key: "", want: 0},
		{key: "abc", want: 294},
		{key: "cba", want: 294},
		{key: "é", want: 233},
		{key: "1AJ23CS001|Data Structures", want: 2210},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.key))
		})
	}
}

func TestBounded(t *testing.T) {
	assert.Equal(t, 10, Bounded("", 0, 10, 10))
	assert.Equal(t, Bounded("abc", 3, 0, 9), Bounded("abc", 3, 9, 0), "swapped bounds")
	for i := 0; i < 50; i++ {
		v := Bounded(fmt.Sprintf("key-%d", i), i, 5, 8)
		assert.True(t, v >= 5 && v <= 8, "got %d", v)
	}
}

func TestMarks(t *testing.T) {
	tests := []struct {
		usn, subject string
		i1, i2, i3   int
	}{
		{usn: "1AJ23CS001", subject: "Data Structures", i1: 24, i2: 31, i3: 35},
		{usn: "1AJ23CS001", subject: "Algorithms", i1: 31, i2: 38, i3: 25},
		{usn: "S1", subject: "Math", i1: 28, i2: 35, i3: 39},
	}
	for _, tt := range tests {
		t.Run(tt.usn+"|"+tt.subject, func(t *testing.T) {
			i1, i2, i3 := Marks(tt.usn, tt.subject)
			assert.Equal(t, []int{tt.i1, tt.i2, tt.i3}, []int{i1, i2, i3})

			// deterministic
			j1, j2, j3 := Marks(tt.usn, tt.subject)
			assert.Equal(t, []int{i1, i2, i3}, []int{j1, j2, j3})
		})
	}
}

func TestAttendance(t *testing.T) {
	tests := []struct {
		usn, subject   string
		attended, held int
	}{
		{usn: "1AJ23CS001", subject: "Data Structures", attended: 16, held: 21},
		{usn: "1AJ23CS001", subject: "Algorithms", attended: 16, held: 19},
		{usn: "S1", subject: "Math", attended: 13, held: 21},
	}
	for _, tt := range tests {
		t.Run(tt.usn+"|"+tt.subject, func(t *testing.T) {
			attended, held := Attendance(tt.usn, tt.subject)
			assert.Equal(t, tt.attended, attended)
			assert.Equal(t, tt.held, held)
		})
	}
}

func TestRanges(t *testing.T) {
	subjects := []string{"Data Structures", "Algorithms", "DBMS", "Thermodynamics", "MLOps", "Big Data"}
	for n := 1; n <= 60; n++ {
		usn := fmt.Sprintf("1AJ23CS%03d", n)
		for _, sub := range subjects {
			i1, i2, i3 := Marks(usn, sub)
			for _, m := range []int{i1, i2, i3} {
				if m < MinMark || m > MaxMark {
					t.Fatalf("Marks(%s, %s) = %d out of range", usn, sub, m)
				}
			}
			attended, held := Attendance(usn, sub)
			if held < MinHeld || held > MaxHeld {
				t.Fatalf("Attendance(%s, %s) held = %d out of range", usn, sub, held)
			}
			if attended < MinAttended || attended > held {
				t.Fatalf("Attendance(%s, %s) = %d/%d", usn, sub, attended, held)
			}
		}
	}
}
