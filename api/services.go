package api

import (
	"context"

	"github.com/Keksclan/gradebook/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service names.
const (
	StudentsService   = "gradebook.Students"
	GroupsService     = "gradebook.Groups"
	SubjectsService   = "gradebook.Subjects"
	MarksService      = "gradebook.Marks"
	EnrollmentService = "gradebook.Enrollment"
	LogsService       = "gradebook.Logs"
)

// StudentService is implemented by service.StudentService.
type StudentService interface {
	ReadStudents(ctx context.Context, age *int, sort *string, id *int64) ([]model.Student, error)
	FindByID(ctx context.Context, id int64) (model.Student, error)
	FindByGroupID(ctx context.Context, groupID int64) ([]model.Student, error)
	AddStudent(ctx context.Context, st model.Student) (model.Student, error)
	UpdateStudent(ctx context.Context, id int64, name string, age int) (model.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// StudentsServiceDesc describes gradebook.Students.
var StudentsServiceDesc = grpc.ServiceDesc{
	ServiceName: StudentsService,
	HandlerType: (*StudentService)(nil),
	Methods: []grpc.MethodDesc{
		unary(StudentsService, "List", func(s StudentService, ctx context.Context, r *ListStudentsRequest) (*StudentList, error) {
			students, err := s.ReadStudents(ctx, r.Age, r.Sort, r.ID)
			if err != nil {
				return nil, err
			}
			return &StudentList{Students: students}, nil
		}),
		unary(StudentsService, "Get", func(s StudentService, ctx context.Context, r *GetStudentRequest) (*model.Student, error) {
			st, err := s.FindByID(ctx, r.ID)
			return &st, err
		}),
		unary(StudentsService, "ByGroup", func(s StudentService, ctx context.Context, r *StudentsByGroupRequest) (*StudentList, error) {
			students, err := s.FindByGroupID(ctx, r.GroupID)
			if err != nil {
				return nil, err
			}
			return &StudentList{Students: students}, nil
		}),
		unary(StudentsService, "Create", func(s StudentService, ctx context.Context, r *CreateStudentRequest) (*model.Student, error) {
			st, err := s.AddStudent(ctx, model.Student{Name: r.Name, Age: r.Age, GroupID: r.GroupID})
			return &st, err
		}),
		unary(StudentsService, "Update", func(s StudentService, ctx context.Context, r *UpdateStudentRequest) (*model.Student, error) {
			st, err := s.UpdateStudent(ctx, r.ID, r.Name, r.Age)
			return &st, err
		}),
		unary(StudentsService, "Delete", func(s StudentService, ctx context.Context, r *DeleteStudentRequest) (*Empty, error) {
			return &Empty{}, s.DeleteStudent(ctx, r.ID)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/students.proto",
}

// GroupService is implemented by service.GroupService.
type GroupService interface {
	ReadGroups(ctx context.Context, pattern, sort *string) ([]model.Group, error)
	FindByID(ctx context.Context, id int64) (model.Group, error)
	FindByName(ctx context.Context, name string) (model.Group, error)
	AddGroup(ctx context.Context, name string, studentIDs []int64) (model.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	DeleteGroupByName(ctx context.Context, name string) error
}

// GroupsServiceDesc describes gradebook.Groups.
var GroupsServiceDesc = grpc.ServiceDesc{
	ServiceName: GroupsService,
	HandlerType: (*GroupService)(nil),
	Methods: []grpc.MethodDesc{
		unary(GroupsService, "List", func(s GroupService, ctx context.Context, r *ListGroupsRequest) (*GroupList, error) {
			groups, err := s.ReadGroups(ctx, r.Pattern, r.Sort)
			if err != nil {
				return nil, err
			}
			return &GroupList{Groups: groups}, nil
		}),
		unary(GroupsService, "Get", func(s GroupService, ctx context.Context, r *GetGroupRequest) (*model.Group, error) {
			g, err := s.FindByID(ctx, r.ID)
			return &g, err
		}),
		unary(GroupsService, "GetByName", func(s GroupService, ctx context.Context, r *GroupNameRequest) (*model.Group, error) {
			g, err := s.FindByName(ctx, r.Name)
			return &g, err
		}),
		unary(GroupsService, "Create", func(s GroupService, ctx context.Context, r *CreateGroupRequest) (*model.Group, error) {
			g, err := s.AddGroup(ctx, r.Name, r.StudentIDs)
			return &g, err
		}),
		unary(GroupsService, "Delete", func(s GroupService, ctx context.Context, r *DeleteGroupRequest) (*Empty, error) {
			return &Empty{}, s.DeleteGroup(ctx, r.ID)
		}),
		unary(GroupsService, "DeleteByName", func(s GroupService, ctx context.Context, r *GroupNameRequest) (*Empty, error) {
			return &Empty{}, s.DeleteGroupByName(ctx, r.Name)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/groups.proto",
}

// SubjectService is implemented by service.SubjectService.
type SubjectService interface {
	ReadSubjects(ctx context.Context, pattern, sort *string) ([]model.Subject, error)
	FindByID(ctx context.Context, id int64) (model.Subject, error)
	FindByName(ctx context.Context, name string) (model.Subject, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	AddSubject(ctx context.Context, name string) (model.Subject, error)
	DeleteSubject(ctx context.Context, id int64) error
	DeleteSubjectByName(ctx context.Context, name string) error
}

// SubjectsServiceDesc describes gradebook.Subjects.
var SubjectsServiceDesc = grpc.ServiceDesc{
	ServiceName: SubjectsService,
	HandlerType: (*SubjectService)(nil),
	Methods: []grpc.MethodDesc{
		unary(SubjectsService, "List", func(s SubjectService, ctx context.Context, r *ListSubjectsRequest) (*SubjectList, error) {
			subjects, err := s.ReadSubjects(ctx, r.Pattern, r.Sort)
			if err != nil {
				return nil, err
			}
			return &SubjectList{Subjects: subjects}, nil
		}),
		unary(SubjectsService, "Get", func(s SubjectService, ctx context.Context, r *GetSubjectRequest) (*model.Subject, error) {
			sub, err := s.FindByID(ctx, r.ID)
			return &sub, err
		}),
		unary(SubjectsService, "GetByName", func(s SubjectService, ctx context.Context, r *SubjectNameRequest) (*model.Subject, error) {
			sub, err := s.FindByName(ctx, r.Name)
			return &sub, err
		}),
		unary(SubjectsService, "Exists", func(s SubjectService, ctx context.Context, r *SubjectNameRequest) (*ExistsResponse, error) {
			ok, err := s.ExistsByName(ctx, r.Name)
			return &ExistsResponse{Exists: ok}, err
		}),
		unary(SubjectsService, "Create", func(s SubjectService, ctx context.Context, r *SubjectNameRequest) (*model.Subject, error) {
			sub, err := s.AddSubject(ctx, r.Name)
			return &sub, err
		}),
		unary(SubjectsService, "Delete", func(s SubjectService, ctx context.Context, r *DeleteSubjectRequest) (*Empty, error) {
			return &Empty{}, s.DeleteSubject(ctx, r.ID)
		}),
		unary(SubjectsService, "DeleteByName", func(s SubjectService, ctx context.Context, r *SubjectNameRequest) (*Empty, error) {
			return &Empty{}, s.DeleteSubjectByName(ctx, r.Name)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/subjects.proto",
}

// MarkService is implemented by service.MarkService.
type MarkService interface {
	ReadMarks(ctx context.Context, studentID, subjectID *int64) ([]model.Mark, error)
	FindByValue(ctx context.Context, value int) ([]model.Mark, error)
	AverageByStudent(ctx context.Context, studentID int64) (*float64, error)
	AverageBySubject(ctx context.Context, subjectID int64) (*float64, error)
	AddMark(ctx context.Context, m model.Mark) (model.Mark, error)
	DeleteMark(ctx context.Context, id int64) error
	DeleteMarkSpecific(ctx context.Context, studentID int64, subjectName string, value int, id *int64) error
}

// average reports a missing average as NotFound.
func average(avg *float64, err error) (*Average, error) {
	if err != nil {
		return nil, err
	}
	if avg == nil {
		return nil, status.Error(codes.NotFound, "no marks")
	}
	return &Average{Value: *avg}, nil
}

// MarksServiceDesc describes gradebook.Marks.
var MarksServiceDesc = grpc.ServiceDesc{
	ServiceName: MarksService,
	HandlerType: (*MarkService)(nil),
	Methods: []grpc.MethodDesc{
		unary(MarksService, "List", func(s MarkService, ctx context.Context, r *ListMarksRequest) (*MarkList, error) {
			marks, err := s.ReadMarks(ctx, r.StudentID, r.SubjectID)
			if err != nil {
				return nil, err
			}
			return &MarkList{Marks: marks}, nil
		}),
		unary(MarksService, "ByValue", func(s MarkService, ctx context.Context, r *MarksByValueRequest) (*MarkList, error) {
			marks, err := s.FindByValue(ctx, r.Value)
			if err != nil {
				return nil, err
			}
			return &MarkList{Marks: marks}, nil
		}),
		unary(MarksService, "AverageByStudent", func(s MarkService, ctx context.Context, r *AverageByStudentRequest) (*Average, error) {
			return average(s.AverageByStudent(ctx, r.StudentID))
		}),
		unary(MarksService, "AverageBySubject", func(s MarkService, ctx context.Context, r *AverageBySubjectRequest) (*Average, error) {
			return average(s.AverageBySubject(ctx, r.SubjectID))
		}),
		unary(MarksService, "Create", func(s MarkService, ctx context.Context, r *CreateMarkRequest) (*model.Mark, error) {
			m, err := s.AddMark(ctx, model.Mark{Value: r.Value, StudentID: r.StudentID, SubjectID: r.SubjectID})
			return &m, err
		}),
		unary(MarksService, "Delete", func(s MarkService, ctx context.Context, r *DeleteMarkRequest) (*Empty, error) {
			return &Empty{}, s.DeleteMark(ctx, r.ID)
		}),
		unary(MarksService, "DeleteSpecific", func(s MarkService, ctx context.Context, r *DeleteSpecificMarkRequest) (*Empty, error) {
			return &Empty{}, s.DeleteMarkSpecific(ctx, r.StudentID, r.SubjectName, r.Value, r.ID)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/marks.proto",
}

// EnrollmentServer is implemented by service.EnrollmentService.
type EnrollmentServer interface {
	AddSubjectToStudent(ctx context.Context, studentID, subjectID int64) error
	RemoveSubjectFromStudent(ctx context.Context, studentID, subjectID int64) error
	SubjectsByStudent(ctx context.Context, studentID int64) ([]model.Subject, error)
	StudentsBySubject(ctx context.Context, subjectID int64) ([]model.Student, error)
	StudentWithSubjects(ctx context.Context, studentID int64) (model.StudentWithSubjects, error)
	SubjectWithStudents(ctx context.Context, subjectID int64) (model.SubjectWithStudents, error)
}

// EnrollmentServiceDesc describes gradebook.Enrollment.
var EnrollmentServiceDesc = grpc.ServiceDesc{
	ServiceName: EnrollmentService,
	HandlerType: (*EnrollmentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(EnrollmentService, "Add", func(s EnrollmentServer, ctx context.Context, r *EnrollmentRequest) (*Empty, error) {
			return &Empty{}, s.AddSubjectToStudent(ctx, r.StudentID, r.SubjectID)
		}),
		unary(EnrollmentService, "Remove", func(s EnrollmentServer, ctx context.Context, r *EnrollmentRequest) (*Empty, error) {
			return &Empty{}, s.RemoveSubjectFromStudent(ctx, r.StudentID, r.SubjectID)
		}),
		unary(EnrollmentService, "SubjectsOfStudent", func(s EnrollmentServer, ctx context.Context, r *StudentRequest) (*SubjectList, error) {
			subjects, err := s.SubjectsByStudent(ctx, r.StudentID)
			if err != nil {
				return nil, err
			}
			return &SubjectList{Subjects: subjects}, nil
		}),
		unary(EnrollmentService, "StudentsOfSubject", func(s EnrollmentServer, ctx context.Context, r *SubjectRequest) (*StudentList, error) {
			students, err := s.StudentsBySubject(ctx, r.SubjectID)
			if err != nil {
				return nil, err
			}
			return &StudentList{Students: students}, nil
		}),
		unary(EnrollmentService, "StudentWithSubjects", func(s EnrollmentServer, ctx context.Context, r *StudentRequest) (*model.StudentWithSubjects, error) {
			v, err := s.StudentWithSubjects(ctx, r.StudentID)
			return &v, err
		}),
		unary(EnrollmentService, "SubjectWithStudents", func(s EnrollmentServer, ctx context.Context, r *SubjectRequest) (*model.SubjectWithStudents, error) {
			v, err := s.SubjectWithStudents(ctx, r.SubjectID)
			return &v, err
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/enrollment.proto",
}

// LogSource returns the log lines written on a date formatted yyyy-MM-dd.
type LogSource interface {
	FilterByDate(date string) ([]string, error)
}

// LogsServiceDesc describes gradebook.Logs.
var LogsServiceDesc = grpc.ServiceDesc{
	ServiceName: LogsService,
	HandlerType: (*LogSource)(nil),
	Methods: []grpc.MethodDesc{
		unary(LogsService, "Get", func(s LogSource, _ context.Context, r *LogsRequest) (*LogLines, error) {
			lines, err := s.FilterByDate(r.Date)
			if err != nil {
				return nil, err
			}
			return &LogLines{Lines: lines}, nil
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradebook/logs.proto",
}
