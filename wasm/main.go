//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/openfluke/gen4ids"
	"github.com/openfluke/gen4ids/config"
)

// initWrapper exposes gen4ids.Initialize. An optional string argument sets
// the log level.
func initWrapper() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		cfg := config.Default()
		// The browser owns adapter selection; no kernel file system either.
		// Map callbacks only run once this goroutine yields to the event
		// loop, so the wait is left unbounded.
		cfg.MapTimeout = 0
		if len(args) > 0 && args[0].Type() == js.TypeString {
			cfg.LogLevel = args[0].String()
		}
		gen4ids.Initialize(gen4ids.WithConfig(cfg))
		return nil
	})
}

// searchWrapper returns a Promise resolving to the comma-joined seeds, or
// rejecting with an Error on any search failure.
func searchWrapper() js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 {
			return rejected(fmt.Errorf("search(tid, sid) expects 2 arguments, got %d", len(args)))
		}
		tid, sid := args[0].Int(), args[1].Int()
		if tid < 0 || tid > 0xffff || sid < 0 || sid > 0xffff {
			return rejected(fmt.Errorf("tid and sid must be in 0..65535, got %d, %d", tid, sid))
		}

		handler := js.FuncOf(func(this js.Value, p []js.Value) interface{} {
			resolve, reject := p[0], p[1]
			// WebGPU callbacks need the event loop, so the search must not
			// block the calling goroutine.
			go func() {
				seeds, err := runSearch(uint16(tid), uint16(sid))
				if err != nil {
					reject.Invoke(jsError(err))
					return
				}
				resolve.Invoke(seeds)
			}()
			return nil
		})
		defer handler.Release()
		return js.Global().Get("Promise").New(handler)
	})
}

func runSearch(tid, sid uint16) (seeds string, err error) {
	defer gen4ids.Recover(&err)
	return gen4ids.Search(context.Background(), tid, sid)
}

func jsError(err error) js.Value {
	return js.Global().Get("Error").New(err.Error())
}

func rejected(err error) js.Value {
	return js.Global().Get("Promise").Call("reject", jsError(err))
}

func main() {
	fmt.Println("gen4ids WASM module initialized")

	js.Global().Set("initGen4ids", initWrapper())
	js.Global().Set("search", searchWrapper())

	fmt.Println("gen4ids WASM API ready:")
	fmt.Println("  - initGen4ids(logLevel?) - one-time logger and panic hook setup")
	fmt.Println("  - search(tid, sid) - Promise<string> of comma-separated seeds")

	// Keep the Go program running
	select {}
}
