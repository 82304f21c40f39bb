// Package model defines the gradebook domain entities shared by the
// services, the store and the wire protocol.
package model

// Student is a learner who may belong to one group and attend many subjects.
type Student struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	GroupID *int64 `json:"groupId,omitempty"`
}

// Group is a named set of students.
type Group struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Students []Student `json:"students,omitempty"`
}

// Subject is a course that students can be enrolled in.
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Mark is a grade a student received in a subject.
type Mark struct {
	ID        int64 `json:"id"`
	Value     int   `json:"value"`
	StudentID int64 `json:"studentId"`
	SubjectID int64 `json:"subjectId"`
}

// StudentWithSubjects is a student together with every subject assigned to
// them.
type StudentWithSubjects struct {
	Student
	Subjects []Subject `json:"subjects"`
}

// SubjectWithStudents is a subject together with every student enrolled in
// it.
type SubjectWithStudents struct {
	Subject
	Students []Student `json:"students"`
}
