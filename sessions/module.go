package sessions

import (
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/runners"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
	Runners runners.Module
}
