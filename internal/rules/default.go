// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import _ "embed"

//go:embed default.ini
var defaultRules []byte

// DefaultSourceName names the built-in rule file in error messages.
const DefaultSourceName = "built-in rules"

// Default returns the built-in rule file compiled into the binary.
func Default() Source {
	return Bytes(DefaultSourceName, defaultRules)
}
