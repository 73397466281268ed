package main

import (
	"io"
	"os"

	"github.com/alnah/go-web2pdf/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // Loaded once, shared across the run
}

// DefaultEnv returns the production environment with default configuration.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
	}
}
