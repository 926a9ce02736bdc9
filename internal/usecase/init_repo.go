package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/tasktree/internal/domain"
)

// InitRepoInput contains the input parameters for InitRepo.
type InitRepoInput struct {
	DataDir string // Path to the .tasktree directory
}

// InitRepoOutput contains the output from InitRepo.
type InitRepoOutput struct {
	DataDir            string // Path to the data directory
	AlreadyInitialized bool   // True if the store already existed
	GitignoreNeedsAdd  bool   // True if the data directory is not listed in .gitignore next to it
}

// InitRepo prepares a data directory for tasktree.
type InitRepo struct {
	storeInit domain.StoreInitializer
}

// NewInitRepo creates a new InitRepo use case.
func NewInitRepo(storeInit domain.StoreInitializer) *InitRepo {
	return &InitRepo{storeInit: storeInit}
}

// Execute creates the data and logs directories and the task store.
// Running it again is harmless.
func (uc *InitRepo) Execute(_ context.Context, in InitRepoInput) (*InitRepoOutput, error) {
	alreadyInitialized := uc.storeInit.IsInitialized()

	if err := os.MkdirAll(filepath.Join(in.DataDir, "logs"), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	if err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize task store: %w", err)
	}

	return &InitRepoOutput{
		DataDir:            in.DataDir,
		AlreadyInitialized: alreadyInitialized,
		GitignoreNeedsAdd:  !alreadyInitialized && !isIgnored(in.DataDir),
	}, nil
}

// isIgnored checks if the data directory is listed in the .gitignore of its parent.
func isIgnored(dataDir string) bool {
	content, err := os.ReadFile(filepath.Join(filepath.Dir(dataDir), ".gitignore"))
	if err != nil {
		return false
	}

	name := filepath.Base(dataDir)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == name || line == name+"/" || line == "/"+name || line == "/"+name+"/" {
			return true
		}
	}
	return false
}
