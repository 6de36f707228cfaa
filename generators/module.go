package generators

import (
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/nets"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Nets    nets.Module
	Logs    logs.Module
}
