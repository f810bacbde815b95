package global

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
)

// Pool runs whole-file copy jobs. main tunes its size from the config.
var Pool = lo.Must(ants.NewPool(runtime.NumCPU()))
