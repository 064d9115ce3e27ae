package ports

import "github.com/kilnbuild/kiln/internal/core/domain"

// PlanLoader defines the interface for loading the build plan.
//
//go:generate go run go.uber.org/mock/mockgen -source=plan_loader.go -destination=mocks/mock_plan_loader.go -package=mocks
type PlanLoader interface {
	// Load reads the plan from the given working directory.
	Load(cwd string) (*domain.Plan, error)
}
