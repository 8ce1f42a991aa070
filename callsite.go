package jogger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// Frame identifies one resolved call frame.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// CallSiteResolver identifies the caller of a logging entry point. skip counts
// frames above the resolver invocation: 0 is the function calling the
// resolver, 1 its caller, and so on. Implementations must skip their own
// frames so the logger core stays testable without a real execution stack.
type CallSiteResolver interface {
	Caller(skip int) Frame
	CallChain(skip int) []Frame
}

// maxChainDepth bounds the number of frames captured for an entry's chain.
const maxChainDepth = 32

// runtimeResolver resolves call sites through runtime.Callers.
type runtimeResolver struct{}

// NewRuntimeResolver returns the default CallSiteResolver backed by the Go runtime.
func NewRuntimeResolver() CallSiteResolver {
	return runtimeResolver{}
}

func (runtimeResolver) Caller(skip int) Frame {
	var pc [1]uintptr
	// +2 accounts for runtime.Callers itself and this method
	if runtime.Callers(skip+2, pc[:]) == 0 {
		return Frame{Function: "(unknown)"}
	}
	frame, _ := runtime.CallersFrames(pc[:]).Next()
	return newFrame(frame)
}

func (runtimeResolver) CallChain(skip int) []Frame {
	pc := make([]uintptr, maxChainDepth)
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pc[:n])
	var chain []Frame
	for {
		frame, more := frames.Next()
		// Drop runtime scheduling internals
		if !strings.HasPrefix(frame.Function, "runtime.") {
			chain = append(chain, newFrame(frame))
		}
		if !more {
			break
		}
	}
	return chain
}

// newFrame converts a runtime frame, simplifying the function name to its
// base form with special handling for anonymous functions.
func newFrame(frame runtime.Frame) Frame {
	funcName := filepath.Base(frame.Function)
	parts := strings.Split(funcName, ".")
	lastPart := parts[len(parts)-1]
	if strings.HasPrefix(lastPart, "func") {
		// Check if rest is just digits
		afterFunc := lastPart[4:]
		isAnonymous := len(afterFunc) > 0
		for _, c := range afterFunc {
			if !unicode.IsDigit(c) {
				isAnonymous = false
				break
			}
		}
		if isAnonymous {
			funcName = fmt.Sprintf("(anonymous %s)", funcName)
		}
	}
	return Frame{
		Function: funcName,
		File:     filepath.Base(frame.File),
		Line:     frame.Line,
	}
}

// dedupeChain collapses duplicate frames (key line+file+function) and renders
// the surviving signatures as a one-line summary for the error diagnostic.
func dedupeChain(chain []Frame) string {
	seen := make(map[string]struct{}, len(chain))
	var b strings.Builder
	for _, f := range chain {
		key := fmt.Sprintf("%d:%s#%s", f.Line, f.File, f.Function)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%d", f.Function, f.Line)
	}
	return b.String()
}
