//go:build !linux

package nodestore

import "os"

func adviseWillNeed(*os.File, int64, int64) {}
