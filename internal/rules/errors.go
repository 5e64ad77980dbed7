// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import "errors"

// Errors returned by Load. Each makes the whole table unusable.
var (
	ErrRuleFile = errors.New("invalid rule file")
	ErrPattern  = errors.New("invalid target pattern")
	ErrCommand  = errors.New("invalid command")
	ErrTemplate = errors.New("invalid template")
	ErrMode     = errors.New("invalid source mode")
)
