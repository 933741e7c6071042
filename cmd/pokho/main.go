/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/MouseMan32/PokHo/cmd/pokho/cmd"
)

func main() {
	cmd.Execute()
}
