// main.go
package main

import (
	"context"

	"github.com/gewnthar/visabulletin/cmd"
)

func main() {
	cmd.ExecuteContext(context.Background())
}
