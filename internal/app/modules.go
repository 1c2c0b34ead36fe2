package app

import (
	"github.com/vk/taskgridgo/internal/capability"
	"github.com/vk/taskgridgo/modules/echo"
	"github.com/vk/taskgridgo/modules/httpagent"
	"github.com/vk/taskgridgo/modules/script"
)

// coreModules is the definitive list of all capability modules that are
// compiled into the taskgrid binary.
var coreModules = []capability.Module{
	&echo.Module{},
	&script.Module{},
	&httpagent.Module{},
}
