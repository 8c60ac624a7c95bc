package student

import "context"

// DirectoryService resolves student fee profiles. The engine treats it as an
// opaque collaborator: a missing student surfaces as a not-found error, any
// transport failure as an http client error, neither retried here.
type DirectoryService interface {
	GetStudentProfile(ctx context.Context, studentID string) (*FeeProfile, error)
}
