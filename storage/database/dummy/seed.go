package dummydb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/seed"
	"github.com/roshna21/DevOps-project/core/student"
)

const (
	demoStudentsPerCourse = 10
	demoMonths            = 6
)

// demoNames are grouped in blocks of demoStudentsPerCourse, in student.Courses order.
var demoNames = []string{
	"Aarav Sharma", "Neha Patel", "Rohit Kumar", "Sana Menon", "Vikram Singh",
	"Priya Iyer", "Karan Verma", "Megha Rao", "Anil Joshi", "Ritu Gupta",
	"Aditya Nair", "Ishita Kapoor", "Manish Sinha", "Kavya Reddy", "Arjun Desai",
	"Nisha Bansal", "Sahil Choudhary", "Aisha Khan", "Deepak Yadav", "Shruti Jain",
	"Tarun Malhotra", "Pooja Kulkarni", "Harsh Vardhan", "Ananya Mishra", "Sandeep Pillai",
	"Divya Shetty", "Varun Bhatt", "Sneha Kaur", "Mohit Arora", "Shreya Saxena",
	"Nikhil Kulkarni", "Isha Garg", "Abhishek Pandey", "Tanvi Agarwal", "Rohan Mehta",
	"Kriti Kapoor", "Yash Chauhan", "Simran Gill", "Prateek Srivastava", "Aditi Krishnan",
	"Ajay D'Souza", "Rachna Shah", "Naveen Menon", "Bhavna Patil", "Suraj Gokhale",
	"Anusha Ramesh", "Akash Saluja", "Priyanka Sethi", "Rajat Bhatnagar", "Smita Deshpande",
	"Kunal Sharma", "Nandini Iyer", "Parth Shah", "Rhea Thomas", "Siddharth Verma",
	"Dia Basu", "Arnav Banerjee", "Mitali Mukherjee", "Devansh Goyal", "Ishani Sen",
}

var demoNotes = []string{
	"Keep up the consistent effort.",
	"Needs to participate more in class.",
	"Shows excellent problem-solving skills.",
}

// demoID derives a stable UUID so demo accounts keep their IDs across restarts.
func demoID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("edumatrix:"+key)).String()
}

// Seed fills the store with a demo school: 10 students per course, one parent each
// and one professor per course mentoring its students. Values are derived from the
// seed package so every run produces the same school.
func (db *DB) Seed(now time.Time) {
	now = now.UTC()
	months := make([]string, 0, demoMonths)
	for i := demoMonths - 1; i >= 0; i-- {
		months = append(months, student.MonthKey(time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)))
	}

	db.student.Lock()
	db.parent.Lock()
	db.professor.Lock()
	defer db.student.Unlock()
	defer db.parent.Unlock()
	defer db.professor.Unlock()

	statuses := []student.MentorStatus{student.NoRemarks, student.NeedsImprovement, student.Excellent}

	for idx, name := range demoNames {
		n := idx + 1
		course := student.Courses[(idx/demoStudentsPerCourse)%len(student.Courses)]
		usn := fmt.Sprintf("1AJ23%s%03d", course.Code, n)

		rec := &studentRecord{
			student: student.Student{
				USN:       usn,
				Name:      name,
				Course:    course.Name,
				Semester:  idx%8 + 1,
				Subjects:  append([]string(nil), course.Subjects...),
				CreatedAt: now,
			},
			marks:      make(map[string]student.SubjectMark),
			attendance: make(map[string]student.SubjectAttendance),
			monthly:    make(map[string]int),
			note: &student.MentorNote{
				Status:    statuses[seed.Bounded(usn, 0, 0, len(statuses)-1)],
				Note:      demoNotes[n%len(demoNotes)],
				UpdatedAt: now,
			},
		}
		for _, sub := range course.Subjects {
			key := seed.MarksKey(usn, sub)
			i1 := seed.Bounded(key, 3, 26, student.MaxMark)
			i2 := seed.Bounded(key, 5, 24, student.MaxMark)
			i3 := seed.Bounded(key, 13, 22, student.MaxMark)
			rec.marks[sub] = student.SubjectMark{Internal1: &i1, Internal2: &i2, Internal3: &i3}
		}
		for _, m := range months {
			rec.monthly[m] = seed.Bounded(usn+"|"+m, 0, 60, 95)
		}
		db.student.table[usn] = rec

		parent := &account.Parent{
			ID:         demoID("parent:" + usn),
			Name:       fmt.Sprintf("Parent %03d", n),
			Mobile:     fmt.Sprintf("9190000000%02d", n),
			StudentUSN: usn,
			CreatedAt:  now,
		}
		db.parent.table[parent.ID] = parent
	}

	for i, course := range student.Courses {
		mentees := make([]string, 0, demoStudentsPerCourse)
		for n := i*demoStudentsPerCourse + 1; n <= (i+1)*demoStudentsPerCourse && n <= len(demoNames); n++ {
			mentees = append(mentees, fmt.Sprintf("1AJ23%s%03d", course.Code, n))
		}
		code := account.ProfessorCode(course.Code, i+1)
		prof := &account.Professor{
			ID:         demoID("professor:" + code),
			Code:       code,
			Name:       fmt.Sprintf("Prof. %s 1", course.Code),
			Mobile:     fmt.Sprintf("91988600000%d", i+1),
			Department: course.Name,
			Approved:   true,
			MenteeUSNs: mentees,
			CreatedAt:  now,
		}
		db.professor.table[prof.ID] = prof
	}
}
