package student

import "sort"

type Course struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

const DefaultCourse = "Computer Science Engineering"

// DefaultSubjects is the subject list used when neither the student nor its course defines one.
var DefaultSubjects = []string{
	"Data Structures",
	"Algorithms",
	"Operating Systems",
	"DBMS",
	"Computer Networks",
	"Software Engineering",
}

var Courses = []Course{
	{Code: "CS", Name: DefaultCourse, Subjects: DefaultSubjects},
	{Code: "EC", Name: "Electronics and Communication Engineering", Subjects: []string{
		"Signals and Systems", "Analog Circuits", "Digital Electronics",
		"Microprocessors", "Communication Systems", "Control Systems",
	}},
	{Code: "CY", Name: "Cyber Security", Subjects: []string{
		"Network Security", "Cryptography", "Digital Forensics",
		"Web Security", "Secure Coding", "Risk Management",
	}},
	{Code: "AI", Name: "AI/ML", Subjects: []string{
		"Probability & Statistics", "Machine Learning", "Deep Learning",
		"Data Mining", "Natural Language Processing", "MLOps",
	}},
	{Code: "ME", Name: "Mechanical Engineering", Subjects: []string{
		"Thermodynamics", "Fluid Mechanics", "Manufacturing Processes",
		"Mechanics of Materials", "Machine Design", "Heat Transfer",
	}},
	{Code: "DS", Name: "Data Science", Subjects: []string{
		"Statistics", "Data Visualization", "Big Data",
		"Data Warehousing", "Applied Machine Learning", "Cloud Computing",
	}},
}

// FindCourse looks a course up by name or code.
func FindCourse(nameOrCode string) (Course, bool) {
	for _, c := range Courses {
		if c.Name == nameOrCode || c.Code == nameOrCode {
			return c, true
		}
	}
	return Course{}, false
}

// SubjectsForCourse returns a copy of the catalog subjects of a course, or DefaultSubjects.
func SubjectsForCourse(course string) []string {
	subjects := DefaultSubjects
	if c, ok := FindCourse(course); ok {
		subjects = c.Subjects
	}
	return append([]string(nil), subjects...)
}

// CanonicalSubjects is the list placeholders are generated for:
// the student's own subjects, else its course catalog, else DefaultSubjects.
func CanonicalSubjects(s Student) []string {
	if len(s.Subjects) > 0 {
		return append([]string(nil), s.Subjects...)
	}
	return SubjectsForCourse(s.Course)
}

// orderSubjects lists the student's subjects first, then every other known subject alphabetically.
func orderSubjects(s Student, sets ...[]string) []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0, len(s.Subjects))
	for _, sub := range s.Subjects {
		if !seen[sub] {
			seen[sub] = true
			ordered = append(ordered, sub)
		}
	}

	var extra []string
	for _, set := range sets {
		for _, sub := range set {
			if !seen[sub] {
				seen[sub] = true
				extra = append(extra, sub)
			}
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}
