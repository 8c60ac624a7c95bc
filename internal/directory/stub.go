package directory

import (
	"context"
	"sync"

	"github.com/feeflow/feeflow/internal/cache"
	"github.com/feeflow/feeflow/internal/config"
	"github.com/feeflow/feeflow/internal/domain/student"
	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/feeflow/feeflow/internal/logger"
)

// StubService is an in-memory directory used in local runs where no real
// directory service is available.
type StubService struct {
	mu       sync.RWMutex
	profiles map[string]*student.FeeProfile
}

func NewStubService() *StubService {
	return &StubService{
		profiles: make(map[string]*student.FeeProfile),
	}
}

// Register adds or replaces a profile.
func (s *StubService) Register(profile *student.FeeProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.StudentID] = profile
}

func (s *StubService) GetStudentProfile(_ context.Context, studentID string) (*student.FeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[studentID]
	if !ok {
		return nil, ierr.NewError("student not found").
			WithHintf("Student %s does not exist in the directory", studentID).
			Mark(ierr.ErrNotFound)
	}
	return profile, nil
}

// NewDirectoryService returns the HTTP client, or the stub when the
// deployment is configured to run without a directory service.
func NewDirectoryService(cfg *config.Configuration, log *logger.Logger, c cache.Cache) student.DirectoryService {
	if cfg.Directory.StubbedEnv {
		log.Infow("using stubbed student directory")
		return NewStubService()
	}
	return NewClient(cfg, log, c)
}
