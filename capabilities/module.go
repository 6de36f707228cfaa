package capabilities

import (
	"github.com/reusee/dscope"
	"github.com/wispworks/wisp/configs"
	"github.com/wispworks/wisp/logs"
	"github.com/wispworks/wisp/nets"
	"github.com/wispworks/wisp/sessions"
)

type Module struct {
	dscope.Module
	Configs  configs.Module
	Logs     logs.Module
	Nets     nets.Module
	Sessions sessions.Module
}
