// main holds the entry logic for the pagescore CLI.
package main

import (
	"github.com/huangsam/pagescore/cmd"
	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Error", err)
	}
	iocache.CloseCaching()
}
