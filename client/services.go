package client

import (
	"context"

	"github.com/Keksclan/gradebook/api"
	"github.com/Keksclan/gradebook/model"
)

// Students calls gradebook.Students.
type Students struct{ c *Client }

func (s *Students) List(ctx context.Context, req api.ListStudentsRequest) ([]model.Student, error) {
	out, err := call[api.StudentList](ctx, s.c, api.StudentsService, "List", &req)
	if err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (s *Students) Get(ctx context.Context, id int64) (model.Student, error) {
	return value(call[model.Student](ctx, s.c, api.StudentsService, "Get", &api.GetStudentRequest{ID: id}))
}

func (s *Students) ByGroup(ctx context.Context, groupID int64) ([]model.Student, error) {
	out, err := call[api.StudentList](ctx, s.c, api.StudentsService, "ByGroup", &api.StudentsByGroupRequest{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (s *Students) Create(ctx context.Context, req api.CreateStudentRequest) (model.Student, error) {
	return value(call[model.Student](ctx, s.c, api.StudentsService, "Create", &req))
}

func (s *Students) Update(ctx context.Context, id int64, name string, age int) (model.Student, error) {
	return value(call[model.Student](ctx, s.c, api.StudentsService, "Update", &api.UpdateStudentRequest{ID: id, Name: name, Age: age}))
}

func (s *Students) Delete(ctx context.Context, id int64) error {
	return exec(ctx, s.c, api.StudentsService, "Delete", &api.DeleteStudentRequest{ID: id})
}

// Groups calls gradebook.Groups.
type Groups struct{ c *Client }

func (g *Groups) List(ctx context.Context, req api.ListGroupsRequest) ([]model.Group, error) {
	out, err := call[api.GroupList](ctx, g.c, api.GroupsService, "List", &req)
	if err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (g *Groups) Get(ctx context.Context, id int64) (model.Group, error) {
	return value(call[model.Group](ctx, g.c, api.GroupsService, "Get", &api.GetGroupRequest{ID: id}))
}

func (g *Groups) GetByName(ctx context.Context, name string) (model.Group, error) {
	return value(call[model.Group](ctx, g.c, api.GroupsService, "GetByName", &api.GroupNameRequest{Name: name}))
}

func (g *Groups) Create(ctx context.Context, name string, studentIDs ...int64) (model.Group, error) {
	if studentIDs == nil {
		studentIDs = []int64{}
	}
	return value(call[model.Group](ctx, g.c, api.GroupsService, "Create", &api.CreateGroupRequest{Name: name, StudentIDs: studentIDs}))
}

func (g *Groups) Delete(ctx context.Context, id int64) error {
	return exec(ctx, g.c, api.GroupsService, "Delete", &api.DeleteGroupRequest{ID: id})
}

func (g *Groups) DeleteByName(ctx context.Context, name string) error {
	return exec(ctx, g.c, api.GroupsService, "DeleteByName", &api.GroupNameRequest{Name: name})
}

// Subjects calls gradebook.Subjects.
type Subjects struct{ c *Client }

func (s *Subjects) List(ctx context.Context, req api.ListSubjectsRequest) ([]model.Subject, error) {
	out, err := call[api.SubjectList](ctx, s.c, api.SubjectsService, "List", &req)
	if err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

func (s *Subjects) Get(ctx context.Context, id int64) (model.Subject, error) {
	return value(call[model.Subject](ctx, s.c, api.SubjectsService, "Get", &api.GetSubjectRequest{ID: id}))
}

func (s *Subjects) GetByName(ctx context.Context, name string) (model.Subject, error) {
	return value(call[model.Subject](ctx, s.c, api.SubjectsService, "GetByName", &api.SubjectNameRequest{Name: name}))
}

func (s *Subjects) Exists(ctx context.Context, name string) (bool, error) {
	out, err := call[api.ExistsResponse](ctx, s.c, api.SubjectsService, "Exists", &api.SubjectNameRequest{Name: name})
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (s *Subjects) Create(ctx context.Context, name string) (model.Subject, error) {
	return value(call[model.Subject](ctx, s.c, api.SubjectsService, "Create", &api.SubjectNameRequest{Name: name}))
}

func (s *Subjects) Delete(ctx context.Context, id int64) error {
	return exec(ctx, s.c, api.SubjectsService, "Delete", &api.DeleteSubjectRequest{ID: id})
}

func (s *Subjects) DeleteByName(ctx context.Context, name string) error {
	return exec(ctx, s.c, api.SubjectsService, "DeleteByName", &api.SubjectNameRequest{Name: name})
}

// Marks calls gradebook.Marks.
type Marks struct{ c *Client }

func (m *Marks) List(ctx context.Context, req api.ListMarksRequest) ([]model.Mark, error) {
	out, err := call[api.MarkList](ctx, m.c, api.MarksService, "List", &req)
	if err != nil {
		return nil, err
	}
	return out.Marks, nil
}

func (m *Marks) ByValue(ctx context.Context, v int) ([]model.Mark, error) {
	out, err := call[api.MarkList](ctx, m.c, api.MarksService, "ByValue", &api.MarksByValueRequest{Value: v})
	if err != nil {
		return nil, err
	}
	return out.Marks, nil
}

// AverageByStudent returns NotFound when the student has no marks.
func (m *Marks) AverageByStudent(ctx context.Context, studentID int64) (float64, error) {
	out, err := call[api.Average](ctx, m.c, api.MarksService, "AverageByStudent", &api.AverageByStudentRequest{StudentID: studentID})
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// AverageBySubject returns NotFound when the subject has no marks.
func (m *Marks) AverageBySubject(ctx context.Context, subjectID int64) (float64, error) {
	out, err := call[api.Average](ctx, m.c, api.MarksService, "AverageBySubject", &api.AverageBySubjectRequest{SubjectID: subjectID})
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

func (m *Marks) Create(ctx context.Context, req api.CreateMarkRequest) (model.Mark, error) {
	return value(call[model.Mark](ctx, m.c, api.MarksService, "Create", &req))
}

func (m *Marks) Delete(ctx context.Context, id int64) error {
	return exec(ctx, m.c, api.MarksService, "Delete", &api.DeleteMarkRequest{ID: id})
}

func (m *Marks) DeleteSpecific(ctx context.Context, req api.DeleteSpecificMarkRequest) error {
	return exec(ctx, m.c, api.MarksService, "DeleteSpecific", &req)
}

// Enrollment calls gradebook.Enrollment.
type Enrollment struct{ c *Client }

func (e *Enrollment) Add(ctx context.Context, studentID, subjectID int64) error {
	return exec(ctx, e.c, api.EnrollmentService, "Add", &api.EnrollmentRequest{StudentID: studentID, SubjectID: subjectID})
}

func (e *Enrollment) Remove(ctx context.Context, studentID, subjectID int64) error {
	return exec(ctx, e.c, api.EnrollmentService, "Remove", &api.EnrollmentRequest{StudentID: studentID, SubjectID: subjectID})
}

func (e *Enrollment) SubjectsOfStudent(ctx context.Context, studentID int64) ([]model.Subject, error) {
	out, err := call[api.SubjectList](ctx, e.c, api.EnrollmentService, "SubjectsOfStudent", &api.StudentRequest{StudentID: studentID})
	if err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

func (e *Enrollment) StudentsOfSubject(ctx context.Context, subjectID int64) ([]model.Student, error) {
	out, err := call[api.StudentList](ctx, e.c, api.EnrollmentService, "StudentsOfSubject", &api.SubjectRequest{SubjectID: subjectID})
	if err != nil {
		return nil, err
	}
	return out.Students, nil
}

func (e *Enrollment) StudentWithSubjects(ctx context.Context, studentID int64) (model.StudentWithSubjects, error) {
	return value(call[model.StudentWithSubjects](ctx, e.c, api.EnrollmentService, "StudentWithSubjects", &api.StudentRequest{StudentID: studentID}))
}

func (e *Enrollment) SubjectWithStudents(ctx context.Context, subjectID int64) (model.SubjectWithStudents, error) {
	return value(call[model.SubjectWithStudents](ctx, e.c, api.EnrollmentService, "SubjectWithStudents", &api.SubjectRequest{SubjectID: subjectID}))
}

// Logs calls gradebook.Logs.
type Logs struct{ c *Client }

// Get returns the log lines written on date (yyyy-MM-dd).
func (l *Logs) Get(ctx context.Context, date string) ([]string, error) {
	out, err := call[api.LogLines](ctx, l.c, api.LogsService, "Get", &api.LogsRequest{Date: date})
	if err != nil {
		return nil, err
	}
	return out.Lines, nil
}

func value[T any](v *T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return *v, nil
}
