// main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hpc-sre/node-monitor/cmd"
)

func main() {
	startTime := time.Now()

	printBanner()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	elapsedTime := time.Since(startTime)
	fmt.Printf("\nTotal execution time: %s\n", elapsedTime)
}

func printBanner() {
	banner := `
 _   _ ____   ____   _   _  ___  ____  _____
| | | |  _ \ / ___| | \ | |/ _ \|  _ \| ____|
| |_| | |_) | |     |  \| | | | | | | |  _|
|  _  |  __/| |___  | |\  | |_| | |_| | |___
|_| |_|_|    \____| |_| \_|\___/|____/|_____|
 __  __  ___  _   _ ___ _____ ___  ____
|  \/  |/ _ \| \ | |_ _|_   _/ _ \|  _ \
| |\/| | | | |  \| || |  | || | | | |_) |
| |  | | |_| | |\  || |  | || |_| |  _ <
|_|  |_|\___/|_| \_|___| |_| \___/|_| \_\

 Version: 1.0.0
 Started at: %s
`
	fmt.Printf(banner, time.Now().Format("2006-01-02 15:04:05"))
}
