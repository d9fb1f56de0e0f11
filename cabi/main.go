package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"encoding/json"
	"unsafe"

	"github.com/openfluke/gen4ids"
	"github.com/openfluke/gen4ids/search"
)

// Helper functions for JSON responses
func errJSON(msg string) *C.char {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return C.CString(string(data))
}

func asJSON(v interface{}) *C.char {
	data, err := json.Marshal(v)
	if err != nil {
		return errJSON(err.Error())
	}
	return C.CString(string(data))
}

//export Gen4Initialize
func Gen4Initialize() {
	gen4ids.Initialize()
}

//export Gen4Encode
func Gen4Encode(tid, sid C.ushort) C.uint {
	return C.uint(search.Encode(uint16(tid), uint16(sid)))
}

//export Gen4Search
func Gen4Search(tid, sid C.ushort) *C.char {
	seeds, err := runSearch(uint16(tid), uint16(sid))
	if err != nil {
		resp := map[string]string{"error": err.Error()}
		if state, ok := search.FailedAt(err); ok {
			resp["state"] = state.String()
		}
		return asJSON(resp)
	}
	return asJSON(map[string]string{"seeds": seeds})
}

func runSearch(tid, sid uint16) (seeds string, err error) {
	defer gen4ids.Recover(&err)
	return gen4ids.Search(context.Background(), tid, sid)
}

//export Gen4Shutdown
func Gen4Shutdown() {
	gen4ids.Shutdown()
}

//export FreeGen4String
func FreeGen4String(str *C.char) {
	C.free(unsafe.Pointer(str))
}

func main() {}
