package runners

import (
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
