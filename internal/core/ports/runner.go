package ports

import "context"

// Runner executes one target's command and returns the produced value.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	// Run executes the command text and returns its captured output.
	// Any file-system effects are the command's own responsibility.
	Run(ctx context.Context, command string) ([]byte, error)
}
