// +build tools

package main

import (
	_ "github.com/cortesi/modd/cmd/modd"
	_ "gotest.tools/gotestsum"
)
