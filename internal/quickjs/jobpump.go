//go:build !v8

package quickjs

import (
	"fmt"
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// jobQueue runs pending QuickJS jobs (Promise reactions) for one VM.
// modernc.org/quickjs never calls JS_ExecutePendingJob itself, so without
// this a bundle's .then() callbacks and async components would never settle.
type jobQueue struct {
	cRuntime uintptr
	tls      *libc.TLS
}

// newJobQueue pulls the unexported runtime handle and TLS out of vm.
//
// VM struct layout (modernc.org/quickjs@v0.17.1):
//
//	type VM struct {
//	    cContext uintptr
//	    ...
//	    runtime  *runtime
//	}
//
//	type runtime struct {
//	    cRuntime uintptr
//	    tls      *libc.TLS
//	}
func newJobQueue(vm *quickjs.VM) (*jobQueue, error) {
	vmVal := reflect.ValueOf(vm).Elem()

	rtField := vmVal.FieldByName("runtime")
	if !rtField.IsValid() || rtField.IsNil() {
		return nil, fmt.Errorf("quickjs.VM has no runtime field")
	}
	rtVal := reflect.NewAt(rtField.Type().Elem(), unsafe.Pointer(rtField.Pointer())).Elem()

	cRuntimeField := rtVal.FieldByName("cRuntime")
	if !cRuntimeField.IsValid() {
		return nil, fmt.Errorf("quickjs runtime has no cRuntime field")
	}
	tlsField := rtVal.FieldByName("tls")
	if !tlsField.IsValid() || tlsField.IsNil() {
		return nil, fmt.Errorf("quickjs runtime has no tls field")
	}

	return &jobQueue{
		cRuntime: uintptr(cRuntimeField.Uint()),
		tls:      (*libc.TLS)(unsafe.Pointer(tlsField.Pointer())),
	}, nil
}

// drain executes jobs until the queue is empty and returns how many ran.
// A job that throws is dropped by QuickJS; draining continues past it.
func (q *jobQueue) drain() int {
	count := 0
	for {
		ret := lib.XJS_ExecutePendingJob(q.tls, q.cRuntime, 0)
		if ret == 0 {
			return count
		}
		count++
	}
}
