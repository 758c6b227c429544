// Command applycrypto analyzes a legacy Java/SQL project and batches it
// for crypto-column rewrites.
package main

import "github.com/applycrypto/engine/internal/cli"

func main() {
	cli.Execute()
}
