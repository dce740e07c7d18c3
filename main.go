/*
Copyright 2024 Fury Racing
*/
package main

import "github.com/furyracing/race-engine/cmd"

func main() {
	cmd.Execute()
}
