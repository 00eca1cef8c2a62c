package main

import "github.com/zintix-labs/fairlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeVerifier, cfg.pprofmode)
}
