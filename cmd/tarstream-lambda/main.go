// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hashicorp/go-tarstream/cmd"

// main starts the `tarstream-lambda` function handler
func main() {
	cmd.RunLambda()
}
