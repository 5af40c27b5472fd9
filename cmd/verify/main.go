// Command verify re-checks the integrity of an audit log file: per-line
// hashes, timestamp ordering, and alert-after-pair ordering. Exits non-zero
// if any violation is found.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"security-core/engine/internal/audit"
)

func main() {
	path := flag.String("f", "security_audit.log", "audit log file to verify")
	flag.Parse()

	report, err := audit.VerifyFile(*path)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}

	fmt.Printf("%s: %d lines checked\n", *path, report.Lines)
	for _, p := range report.Problems {
		fmt.Println(p)
	}
	if !report.OK() {
		fmt.Printf("%d violation(s) found\n", len(report.Problems))
		os.Exit(1)
	}
	fmt.Println("ok")
}
