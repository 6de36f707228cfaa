package nets

import (
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
