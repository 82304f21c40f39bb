// Package api exposes the gradebook services over gRPC. Services are
// registered through hand-written [grpc.ServiceDesc] values, so no protobuf
// code generation is required; request and response types are plain Go
// structs carried by the JSON-backed [Codec].
package api

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the struct tags of a request.
func Validate(req any) error {
	return getValidator().Struct(req)
}

// FullMethod returns "/service/method".
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary builds a MethodDesc that decodes a *Req, validates it, calls fn on
// the registered implementation S and maps errors to gRPC status codes.
func unary[S, Req, Resp any](service, method string, fn func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := FullMethod(service, method)
	call := func(srv any, ctx context.Context, req any) (any, error) {
		in := req.(*Req)
		if err := Validate(in); err != nil {
			return nil, ToStatus(err)
		}
		out, err := fn(srv.(S), ctx, in)
		if err != nil {
			return nil, ToStatus(err)
		}
		return out, nil
	}
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, req)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: full,
			}
			handler := func(ctx context.Context, r any) (any, error) {
				return call(srv, ctx, r)
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// Services bundles the implementations served by Register. Nil fields are
// skipped.
type Services struct {
	Students   StudentService
	Groups     GroupService
	Subjects   SubjectService
	Marks      MarkService
	Enrollment EnrollmentServer
	Logs       LogSource
}

// Register registers every non-nil service on s.
func Register(s grpc.ServiceRegistrar, svcs Services) {
	if svcs.Students != nil {
		s.RegisterService(&StudentsServiceDesc, svcs.Students)
	}
	if svcs.Groups != nil {
		s.RegisterService(&GroupsServiceDesc, svcs.Groups)
	}
	if svcs.Subjects != nil {
		s.RegisterService(&SubjectsServiceDesc, svcs.Subjects)
	}
	if svcs.Marks != nil {
		s.RegisterService(&MarksServiceDesc, svcs.Marks)
	}
	if svcs.Enrollment != nil {
		s.RegisterService(&EnrollmentServiceDesc, svcs.Enrollment)
	}
	if svcs.Logs != nil {
		s.RegisterService(&LogsServiceDesc, svcs.Logs)
	}
}
