package activation

import _ "embed"

// Source is the Go source of the runtime, shipped into instrumented modules.
//
//go:embed state.go
var Source []byte
