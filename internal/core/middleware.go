// Package core assembles the interceptor pipeline of the gradebook server.
package core

import (
	"cmp"
	"slices"

	"google.golang.org/grpc"
)

type stage struct {
	name     string
	priority int
	unary    grpc.UnaryServerInterceptor
	stream   grpc.StreamServerInterceptor
}

// Pipeline orders interceptors by priority; lower priorities run first
// (outermost) and equal priorities keep their insertion order.
type Pipeline struct {
	stages []stage
}

// Add registers a named stage. Either interceptor may be nil.
func (p *Pipeline) Add(priority int, name string, unary grpc.UnaryServerInterceptor, stream grpc.StreamServerInterceptor) {
	p.stages = append(p.stages, stage{name: name, priority: priority, unary: unary, stream: stream})
}

func (p *Pipeline) sorted() []stage {
	out := slices.Clone(p.stages)
	slices.SortStableFunc(out, func(a, b stage) int { return cmp.Compare(a.priority, b.priority) })
	return out
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	stages := p.sorted()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Build returns the unary and stream interceptors in execution order.
func (p *Pipeline) Build() ([]grpc.UnaryServerInterceptor, []grpc.StreamServerInterceptor) {
	var (
		unary  []grpc.UnaryServerInterceptor
		stream []grpc.StreamServerInterceptor
	)
	for _, s := range p.sorted() {
		if s.unary != nil {
			unary = append(unary, s.unary)
		}
		if s.stream != nil {
			stream = append(stream, s.stream)
		}
	}
	return unary, stream
}

// ServerOptions chains the pipeline with the given chain functions and
// wraps the result as grpc server options.
func (p *Pipeline) ServerOptions(
	chainUnary func([]grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor,
	chainStream func([]grpc.StreamServerInterceptor) grpc.StreamServerInterceptor,
) []grpc.ServerOption {
	unary, stream := p.Build()
	var opts []grpc.ServerOption
	if u := chainUnary(unary); u != nil {
		opts = append(opts, grpc.UnaryInterceptor(u))
	}
	if s := chainStream(stream); s != nil {
		opts = append(opts, grpc.StreamInterceptor(s))
	}
	return opts
}
