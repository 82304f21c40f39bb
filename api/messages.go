package api

import "github.com/Keksclan/gradebook/model"

// Empty is returned by methods that have no result.
type Empty struct{}

// Students

type ListStudentsRequest struct {
	Age  *int    `json:"age,omitempty" validate:"omitempty,gt=0"`
	Sort *string `json:"sort,omitempty"`
	ID   *int64  `json:"id,omitempty" validate:"omitempty,gt=0"`
}

type StudentList struct {
	Students []model.Student `json:"students"`
}

type GetStudentRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type StudentsByGroupRequest struct {
	GroupID int64 `json:"groupId" validate:"gt=0"`
}

type CreateStudentRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Age     int    `json:"age" validate:"gt=0,lt=200"`
	GroupID *int64 `json:"groupId,omitempty" validate:"omitempty,gt=0"`
}

type UpdateStudentRequest struct {
	ID   int64  `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required,max=255"`
	Age  int    `json:"age" validate:"gt=0,lt=200"`
}

type DeleteStudentRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// Groups

type ListGroupsRequest struct {
	Pattern *string `json:"pattern,omitempty"`
	Sort    *string `json:"sort,omitempty"`
}

type GroupList struct {
	Groups []model.Group `json:"groups"`
}

type GetGroupRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type GroupNameRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateGroupRequest struct {
	Name       string  `json:"name" validate:"required,max=255"`
	StudentIDs []int64 `json:"studentIds" validate:"dive,gt=0"`
}

type DeleteGroupRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// Subjects

type ListSubjectsRequest struct {
	Pattern *string `json:"pattern,omitempty"`
	Sort    *string `json:"sort,omitempty"`
}

type SubjectList struct {
	Subjects []model.Subject `json:"subjects"`
}

type GetSubjectRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type SubjectNameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type DeleteSubjectRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// Marks

type ListMarksRequest struct {
	StudentID *int64 `json:"studentId,omitempty" validate:"omitempty,gt=0"`
	SubjectID *int64 `json:"subjectId,omitempty" validate:"omitempty,gt=0"`
}

type MarkList struct {
	Marks []model.Mark `json:"marks"`
}

type MarksByValueRequest struct {
	Value int `json:"value" validate:"gt=0"`
}

type AverageByStudentRequest struct {
	StudentID int64 `json:"studentId" validate:"gt=0"`
}

type AverageBySubjectRequest struct {
	SubjectID int64 `json:"subjectId" validate:"gt=0"`
}

type Average struct {
	Value float64 `json:"value"`
}

type CreateMarkRequest struct {
	Value     int   `json:"value" validate:"gt=0"`
	StudentID int64 `json:"studentId" validate:"gt=0"`
	SubjectID int64 `json:"subjectId" validate:"gt=0"`
}

type DeleteMarkRequest struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type DeleteSpecificMarkRequest struct {
	StudentID   int64  `json:"studentId" validate:"gt=0"`
	SubjectName string `json:"subjectName" validate:"required"`
	Value       int    `json:"value" validate:"gt=0"`
	ID          *int64 `json:"id,omitempty" validate:"omitempty,gt=0"`
}

// Enrollment

type EnrollmentRequest struct {
	StudentID int64 `json:"studentId" validate:"gt=0"`
	SubjectID int64 `json:"subjectId" validate:"gt=0"`
}

type StudentRequest struct {
	StudentID int64 `json:"studentId" validate:"gt=0"`
}

type SubjectRequest struct {
	SubjectID int64 `json:"subjectId" validate:"gt=0"`
}

// Logs

type LogsRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type LogLines struct {
	Lines []string `json:"lines"`
}
