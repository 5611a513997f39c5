//go:build js && wasm

// ABOUTME: syscall/js helpers
// ABOUTME: Promise awaiting and exception conversion
package browser

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

func truthy(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull() && v.Truthy()
}

// call invokes a method, converting a thrown exception to an error
func call(v js.Value, method string, args ...any) (res js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	return v.Call(method, args...), nil
}

// set assigns a property, converting a thrown exception to an error
func set(v js.Value, prop string, x any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	v.Set(prop, x)
	return nil
}

func toError(r any) error {
	if jerr, ok := r.(js.Error); ok {
		return fromJS(jerr.Value)
	}
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// fromJS converts a DOMException or Error value. AbortError maps to media.ErrAborted.
func fromJS(v js.Value) error {
	if v.Type() != js.TypeObject {
		return fmt.Errorf("javascript error: %s", v.String())
	}

	name := v.Get("name").String()
	msg := v.Get("message").String()
	if name == "AbortError" {
		return fmt.Errorf("%w: %s", media.ErrAborted, msg)
	}
	return fmt.Errorf("%s: %s", name, msg)
}

type settled struct {
	value js.Value
	err   error
}

// await blocks until promise settles or ctx is done
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	if !truthy(promise) || promise.Get("then").Type() != js.TypeFunction {
		return promise, nil
	}

	ch := make(chan settled, 1)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- settled{value: v}
		return nil
	})
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		err := fmt.Errorf("promise rejected")
		if len(args) > 0 {
			err = fromJS(args[0])
		}
		ch <- settled{err: err}
		return nil
	})
	release := func() {
		onResolve.Release()
		onReject.Release()
	}

	promise.Call("then", onResolve, onReject)

	select {
	case r := <-ch:
		release()
		return r.value, r.err
	case <-ctx.Done():
		// The callbacks must outlive the promise
		go func() {
			<-ch
			release()
		}()
		return js.Undefined(), ctx.Err()
	}
}
